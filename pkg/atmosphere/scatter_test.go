package atmosphere

import (
	gomath "math"
	"sync"
	"testing"

	"github.com/Faultbox/midgard-sky/pkg/math"
)

var zenith = math.Vec3{Y: 1}

func mustNew(t *testing.T, sun math.Vec3, p Params) *Scatterer {
	t.Helper()
	s, err := New(sun, p)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func checkRadiance(t *testing.T, label string, r math.Vec3) {
	t.Helper()
	if !r.IsFinite() {
		t.Errorf("%s: radiance not finite: %v", label, r)
	}
	if r.MinComponent() < 0 {
		t.Errorf("%s: negative radiance: %v", label, r)
	}
}

func TestZenithScenario(t *testing.T) {
	s := mustNew(t, zenith, DefaultParams())
	r := s.Radiance(zenith)

	checkRadiance(t, "zenith", r)
	if r.X <= 0 {
		t.Fatalf("expected lit sky, got %v", r)
	}
	// Blue scatters most, red least
	if !(r.Z > r.Y && r.Y > r.X) {
		t.Errorf("expected blue > green > red, got %v", r)
	}
	if r.MaxComponent() > 10 {
		t.Errorf("zenith radiance unexpectedly large: %v", r)
	}
}

func TestLookingDownHitsPlanet(t *testing.T) {
	s := mustNew(t, zenith, DefaultParams())
	down := math.Vec3{Y: -1}

	if !s.HitsPlanet(down) {
		t.Fatal("expected view straight down to hit the planet")
	}
	r := s.Radiance(down)
	checkRadiance(t, "down", r)

	seg, ok := s.bound(down)
	if !ok {
		t.Fatal("expected a bounded segment")
	}
	if seg.entry != 0 {
		t.Errorf("entry = %v, want 0 for an eye inside the atmosphere", seg.entry)
	}
	if want := 1000.0 / 16; gomath.Abs(seg.step-want) > 1e-6 {
		t.Errorf("step = %v, want %v (clipped at the ground)", seg.step, want)
	}
}

func TestMissReturnsZero(t *testing.T) {
	p := DefaultParams()
	p.RayOrigin = math.Vec3{Y: 7e6} // Above the atmosphere
	s := mustNew(t, zenith, p)

	views := []math.Vec3{
		{Y: 1},           // Atmosphere entirely behind
		{X: 1},           // Passes beside the shell
		{X: 1, Y: 0.1},   // Also outside
		{Z: -1, Y: 0.01}, // Grazing away
	}
	for _, v := range views {
		if r := s.Radiance(v); r != (math.Vec3{}) {
			t.Errorf("Radiance(%v) = %v, want exact zero", v, r)
		}
		if tr := s.Transmittance(v); tr != math.Splat(1) {
			t.Errorf("Transmittance(%v) = %v, want 1", v, tr)
		}
	}

	// Looking back at the planet from space does see the atmosphere
	down := math.Vec3{Y: -1}
	r := s.Radiance(down)
	checkRadiance(t, "from space", r)
	if r.IsZero() {
		t.Error("expected light when looking through the atmosphere from space")
	}

	seg, ok := s.bound(down)
	if !ok {
		t.Fatal("expected a bounded segment")
	}
	if gomath.Abs(seg.entry-529e3) > 1e-3 {
		t.Errorf("entry = %v, want 529km", seg.entry)
	}
	if gomath.Abs(seg.step-100e3/16) > 1e-3 {
		t.Errorf("step = %v, want %v", seg.step, 100e3/16)
	}
}

func TestZeroViewDirection(t *testing.T) {
	s := mustNew(t, zenith, DefaultParams())
	if r := s.Radiance(math.Vec3{}); r != (math.Vec3{}) {
		t.Errorf("Radiance(zero) = %v, want zero", r)
	}
	if r := s.Radiance(math.Vec3{X: gomath.NaN()}); r != (math.Vec3{}) {
		t.Errorf("Radiance(NaN) = %v, want zero", r)
	}
}

func TestNonNegativeEverywhere(t *testing.T) {
	suns := []math.Vec3{
		SunDirection(0, 90),
		SunDirection(30, 45),
		SunDirection(200, 2),
		SunDirection(90, -5),
		SunDirection(10, -60),
	}
	for _, name := range PresetNames() {
		p, err := Preset(name)
		if err != nil {
			t.Fatal(err)
		}
		for _, sun := range suns {
			s := mustNew(t, sun, p)
			for az := 0.0; az < 360; az += 45 {
				for el := -90.0; el <= 90; el += 15 {
					checkRadiance(t, name, s.Radiance(SunDirection(az, el)))
				}
			}
		}
	}
}

func TestUnnormalizedInputs(t *testing.T) {
	a := mustNew(t, zenith, DefaultParams())
	b := mustNew(t, zenith.Scale(1e6), DefaultParams())

	view := math.Vec3{X: 1, Y: 1}
	ra := a.Radiance(view.Normalize())
	rb := b.Radiance(view.Scale(42))
	if ra.Sub(rb).Length() > 1e-12*ra.Length() {
		t.Errorf("unnormalized inputs changed result: %v vs %v", ra, rb)
	}

	for _, scale := range []float64{1e200, 1e-200, 1e-310} {
		if r := a.Radiance(view.Scale(scale)); r.Sub(ra).Length() > 1e-12*ra.Length() {
			t.Errorf("view scaled by %g: got %v, want %v", scale, r, ra)
		}
		if tr, want := a.Transmittance(view.Scale(scale)), a.Transmittance(view); tr.Sub(want).Length() > 1e-12 {
			t.Errorf("transmittance scaled by %g: got %v, want %v", scale, tr, want)
		}
	}
	if !a.HitsPlanet(math.Vec3{Y: -1e-300}) {
		t.Error("tiny downward view should hit the planet")
	}
	if a.HitsPlanet(math.Vec3{}) {
		t.Error("zero view should not hit the planet")
	}
}

func TestLinearInSunIntensity(t *testing.T) {
	view := SunDirection(120, 20)
	sun := SunDirection(40, 15)

	p := DefaultParams()
	base := mustNew(t, sun, p).Radiance(view)

	for _, k := range []float64{0.5, 2, 3.5, 100} {
		q := p
		q.SunIntensity = p.SunIntensity * k
		got := mustNew(t, sun, q).Radiance(view)
		want := base.Scale(k)
		if got.Sub(want).Length() > 1e-12*want.Length() {
			t.Errorf("k=%v: got %v, want %v", k, got, want)
		}
	}
}

func TestStepCountConvergence(t *testing.T) {
	steps := [][2]int{{16, 8}, {64, 32}, {256, 128}, {1024, 512}}
	results := make([]math.Vec3, len(steps))
	for i, st := range steps {
		p := DefaultParams()
		p.PrimarySteps, p.SecondarySteps = st[0], st[1]
		results[i] = mustNew(t, zenith, p).Radiance(zenith)
	}

	ref := results[len(results)-1]
	errs := make([]float64, len(results)-1)
	for i := range errs {
		errs[i] = results[i].Sub(ref).Length() / ref.Length()
	}
	for i := 1; i < len(errs); i++ {
		if errs[i] >= errs[i-1] {
			t.Errorf("error did not shrink: %v", errs)
		}
	}
	if errs[len(errs)-1] > 0.01 {
		t.Errorf("256/128 steps still %.4f away from 1024/512", errs[len(errs)-1])
	}
}

func TestIdempotent(t *testing.T) {
	s := mustNew(t, SunDirection(75, 10), DefaultParams())
	view := SunDirection(80, 5)

	first := s.Radiance(view)
	for i := 0; i < 5; i++ {
		if again := s.Radiance(view); again != first {
			t.Fatalf("call %d returned %v, first returned %v", i, again, first)
		}
	}
}

func TestConcurrentCallsMatchSerial(t *testing.T) {
	s := mustNew(t, SunDirection(10, 30), DefaultParams())

	var views []math.Vec3
	for az := 0.0; az < 360; az += 30 {
		for el := -30.0; el <= 90; el += 20 {
			views = append(views, SunDirection(az, el))
		}
	}
	want := make([]math.Vec3, len(views))
	for i, v := range views {
		want[i] = s.Radiance(v)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := range views {
				j := (i + offset) % len(views)
				if got := s.Radiance(views[j]); got != want[j] {
					t.Errorf("goroutine %d view %d: got %v, want %v", offset, j, got, want[j])
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestNewFunc(t *testing.T) {
	fn, err := NewFunc(zenith, DefaultParams())
	if err != nil {
		t.Fatalf("NewFunc() error: %v", err)
	}
	s := mustNew(t, zenith, DefaultParams())
	if got, want := fn(zenith), s.Radiance(zenith); got != want {
		t.Errorf("Func = %v, Scatterer = %v", got, want)
	}

	bad := DefaultParams()
	bad.PrimarySteps = 0
	if _, err := NewFunc(zenith, bad); err == nil {
		t.Error("expected error for invalid params")
	}
}

func TestNewRejectsBadSun(t *testing.T) {
	for _, sun := range []math.Vec3{{}, {X: gomath.Inf(1)}, {Y: gomath.NaN()}} {
		if _, err := New(sun, DefaultParams()); err == nil {
			t.Errorf("New(%v) should fail", sun)
		}
	}

	// Extreme but valid magnitudes normalize to the same sun
	want := mustNew(t, zenith, DefaultParams()).Radiance(zenith)
	for _, sun := range []math.Vec3{{Y: 1e-200}, {Y: 1e-320}, {Y: 1e300}} {
		s := mustNew(t, sun, DefaultParams())
		if s.Sun() != zenith {
			t.Errorf("New(%v).Sun() = %v, want %v", sun, s.Sun(), zenith)
		}
		if got := s.Radiance(zenith); got != want {
			t.Errorf("New(%v) zenith radiance = %v, want %v", sun, got, want)
		}
	}
}

func TestPlanetShadow(t *testing.T) {
	below := math.Vec3{Y: -1} // Sun on the far side of the planet
	view := SunDirection(0, 30)

	p := DefaultParams()
	checkRadiance(t, "unshadowed night", mustNew(t, below, p).Radiance(view))

	shadowed := p
	shadowed.PlanetShadow = true
	if r := mustNew(t, below, shadowed).Radiance(view); r != (math.Vec3{}) {
		t.Errorf("with planet shadow, got %v, want zero", r)
	}

	// Just after sunset shadowing can only remove light
	dusk := SunDirection(0, -3)
	for el := 0.0; el <= 60; el += 10 {
		v := SunDirection(0, el)
		open := mustNew(t, dusk, p).Radiance(v)
		dark := mustNew(t, dusk, shadowed).Radiance(v)
		if dark.X > open.X || dark.Y > open.Y || dark.Z > open.Z {
			t.Errorf("elevation %v: shadowed %v brighter than unshadowed %v", el, dark, open)
		}
	}

	// Daytime sky is unaffected
	day := SunDirection(0, 60)
	a := mustNew(t, day, p).Radiance(view)
	b := mustNew(t, day, shadowed).Radiance(view)
	if a != b {
		t.Errorf("planet shadow changed a daytime sky: %v vs %v", a, b)
	}
}

func TestTransmittance(t *testing.T) {
	s := mustNew(t, zenith, DefaultParams())

	up := s.Transmittance(zenith)
	horizon := s.Transmittance(SunDirection(0, 1))
	for _, tr := range []math.Vec3{up, horizon} {
		if tr.MinComponent() <= 0 || tr.MaxComponent() >= 1 {
			t.Errorf("transmittance out of (0,1): %v", tr)
		}
	}
	if horizon.X >= up.X {
		t.Errorf("horizon should be dimmer than zenith: %v vs %v", horizon, up)
	}
	if up.Z >= up.X {
		t.Errorf("blue should attenuate more than red: %v", up)
	}
}

func TestSunOverheadLookingAtSun(t *testing.T) {
	p := DefaultParams()
	p.MieG = 0.999
	s := mustNew(t, zenith, p)
	checkRadiance(t, "forward peak", s.Radiance(zenith))
}
