package gpu

import "testing"

func TestTargetSetEnsure(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	var ts targetSet
	if err := ts.ensure(device, 100, 80, 4); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	defer ts.destroy(device)

	if ts.colorTex == nil || ts.colorView == nil {
		t.Error("color attachment missing")
	}
	if ts.stencilTex == nil || ts.stencilView == nil {
		t.Error("stencil attachment missing")
	}
	if ts.resolveTex == nil || ts.resolveView == nil {
		t.Error("MSAA target needs a resolve texture")
	}
	if ts.width != 100 || ts.height != 80 {
		t.Errorf("size = %dx%d, want 100x80", ts.width, ts.height)
	}
}

func TestTargetSetEnsureIdempotent(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	var ts targetSet
	if err := ts.ensure(device, 64, 64, 4); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	defer ts.destroy(device)

	first := ts.colorTex
	if err := ts.ensure(device, 64, 64, 4); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if ts.colorTex != first {
		t.Error("same-size ensure should reuse textures")
	}

	if err := ts.ensure(device, 128, 64, 4); err != nil {
		t.Fatalf("resize ensure failed: %v", err)
	}
	if ts.colorTex == first {
		t.Error("resize should recreate textures")
	}
	if ts.width != 128 {
		t.Errorf("width = %d, want 128", ts.width)
	}
}

func TestTargetSetSingleSample(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	var ts targetSet
	if err := ts.ensure(device, 32, 32, 1); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	defer ts.destroy(device)

	if ts.resolveTex != nil {
		t.Error("single-sample target should have no resolve texture")
	}
	if ts.resolveTarget() != nil {
		t.Error("resolveTarget() should be nil single-sampled")
	}
	if ts.readbackTexture() != ts.colorTex {
		t.Error("readback should come straight from the color texture")
	}
}

func TestTargetSetReadbackMSAA(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	var ts targetSet
	if err := ts.ensure(device, 32, 32, 4); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	defer ts.destroy(device)

	if ts.resolveTarget() != ts.resolveView {
		t.Error("MSAA passes should resolve into the resolve view")
	}
	if ts.readbackTexture() != ts.resolveTex {
		t.Error("MSAA readback should come from the resolve texture")
	}
}

func TestTargetSetDestroyResets(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	var ts targetSet
	if err := ts.ensure(device, 16, 16, 4); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	ts.destroy(device)
	ts.destroy(device)

	if ts.colorTex != nil || ts.stencilTex != nil || ts.resolveTex != nil {
		t.Error("textures should be nil after destroy")
	}
	if ts.width != 0 || ts.height != 0 {
		t.Error("size should reset after destroy")
	}
}

func TestFxSetEnsureMSAA(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	var fx fxSet
	if err := fx.ensure(device, 100, 100, 4); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	defer fx.destroy(device)

	if fx.colorTex == nil {
		t.Error("MSAA fx set needs a multisampled color texture")
	}
	if fx.stencilTex == nil || fx.stencilView == nil {
		t.Error("fx stencil attachment missing")
	}
	if fx.pingTex == nil || fx.pongTex == nil {
		t.Error("blur ping-pong textures missing")
	}

	view, resolve := fx.silhouetteColorView()
	if view != fx.colorView {
		t.Error("MSAA silhouette should render into the fx color view")
	}
	if resolve != fx.pingView {
		t.Error("MSAA silhouette should resolve into ping")
	}
}

func TestFxSetEnsureSingleSample(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	var fx fxSet
	if err := fx.ensure(device, 100, 100, 1); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	defer fx.destroy(device)

	if fx.colorTex != nil {
		t.Error("single-sample fx set should not allocate a separate color texture")
	}
	view, resolve := fx.silhouetteColorView()
	if view != fx.pingView {
		t.Error("single-sample silhouette should render straight into ping")
	}
	if resolve != nil {
		t.Error("single-sample silhouette needs no resolve")
	}
}

func TestFxSetEnsureIdempotent(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	var fx fxSet
	if err := fx.ensure(device, 64, 64, 4); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	defer fx.destroy(device)

	first := fx.pingTex
	if err := fx.ensure(device, 64, 64, 4); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if fx.pingTex != first {
		t.Error("same-size ensure should reuse fx textures")
	}
}
