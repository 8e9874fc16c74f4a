package geom

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/midgard-sky/pkg/math"
)

func near(a, b, tol float64) bool {
	return gomath.Abs(a-b) <= tol
}

func TestIntersectSphere(t *testing.T) {
	tests := []struct {
		name      string
		ray       Ray
		radius    float64
		wantOK    bool
		wantNear  float64
		wantFar   float64
		tolerance float64
	}{
		{
			name:     "outside facing sphere",
			ray:      Ray{Origin: math.Vec3{Z: -10}, Direction: math.Vec3{Z: 1}},
			radius:   2,
			wantOK:   true,
			wantNear: 8,
			wantFar:  12,
		},
		{
			name:     "inside sphere",
			ray:      Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}},
			radius:   3,
			wantOK:   true,
			wantNear: -3,
			wantFar:  3,
		},
		{
			name:     "sphere behind origin",
			ray:      Ray{Origin: math.Vec3{Y: 10}, Direction: math.Vec3{Y: 1}},
			radius:   1,
			wantOK:   true,
			wantNear: -11,
			wantFar:  -9,
		},
		{
			name:   "miss",
			ray:    Ray{Origin: math.Vec3{X: 5, Z: -10}, Direction: math.Vec3{Z: 1}},
			radius: 2,
			wantOK: false,
		},
		{
			name:      "planet scale from just above surface",
			ray:       Ray{Origin: math.Vec3{Y: 6372e3}, Direction: math.Vec3{Y: 1}},
			radius:    6471e3,
			wantOK:    true,
			wantNear:  -6372e3 - 6471e3,
			wantFar:   99e3,
			tolerance: 1e-6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tNear, tFar, ok := tt.ray.IntersectSphere(math.Vec3{}, tt.radius)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			tol := tt.tolerance
			if tol == 0 {
				tol = 1e-9
			}
			if !near(tNear, tt.wantNear, tol) || !near(tFar, tt.wantFar, tol) {
				t.Errorf("got (%v, %v), want (%v, %v)", tNear, tFar, tt.wantNear, tt.wantFar)
			}
			if tNear > tFar {
				t.Errorf("tNear %v > tFar %v", tNear, tFar)
			}
		})
	}
}

func TestIntersectSphereOffCenter(t *testing.T) {
	r := Ray{Origin: math.Vec3{X: 1, Y: 1, Z: -5}, Direction: math.Vec3{Z: 1}}
	tNear, tFar, ok := r.IntersectSphere(math.Vec3{X: 1, Y: 1}, 1)
	if !ok {
		t.Fatal("expected hit")
	}
	if !near(tNear, 4, 1e-12) || !near(tFar, 6, 1e-12) {
		t.Errorf("got (%v, %v), want (4, 6)", tNear, tFar)
	}
}

func TestRayAt(t *testing.T) {
	r := Ray{Origin: math.Vec3{X: 1}, Direction: math.Vec3{Y: 1}}
	if got := r.At(2.5); got != (math.Vec3{X: 1, Y: 2.5}) {
		t.Errorf("At(2.5) = %v", got)
	}
}

func TestScreenToRay(t *testing.T) {
	view := mgl64.LookAtV(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0})
	proj := mgl64.Perspective(mgl64.DegToRad(90), 1, 0.1, 100)
	inv := proj.Mul4(view).Inv()

	// Center of the viewport looks straight down -Z
	center := ScreenToRay(50, 50, 100, 100, inv)
	if !near(center.Direction.Z, -1, 1e-9) {
		t.Errorf("center direction = %v, want (0,0,-1)", center.Direction)
	}

	// Top edge with a 90 degree fov is 45 degrees up
	top := ScreenToRay(50, 0, 100, 100, inv)
	if !near(top.Direction.Y, gomath.Sqrt2/2, 1e-9) || !near(top.Direction.Z, -gomath.Sqrt2/2, 1e-9) {
		t.Errorf("top direction = %v", top.Direction)
	}

	// Right edge points toward +X
	right := ScreenToRay(100, 50, 100, 100, inv)
	if right.Direction.X <= 0 {
		t.Errorf("right direction = %v, want positive X", right.Direction)
	}

	if l := top.Direction.Length(); !near(l, 1, 1e-12) {
		t.Errorf("direction not normalized: %v", l)
	}
}
