package gfx

import "testing"

func TestBlendNone(t *testing.T) {
	dst := RGB(10, 20, 30)
	src := Color{R: 200, G: 100, B: 50, A: 128}
	if got := BlendNone.Blend(dst, src); got != src {
		t.Errorf("BlendNone = %v, want %v", got, src)
	}
}

func TestBlendAlpha(t *testing.T) {
	tests := []struct {
		name string
		dst  Color
		src  Color
		want Color
	}{
		{
			name: "full source alpha replaces",
			dst:  RGB(10, 20, 30),
			src:  RGB(200, 100, 50),
			want: RGB(200, 100, 50),
		},
		{
			name: "zero source alpha keeps destination",
			dst:  RGB(10, 20, 30),
			src:  Color{R: 200, G: 100, B: 50, A: 0},
			want: RGB(10, 20, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BlendAlpha.Blend(tt.dst, tt.src); got != tt.want {
				t.Errorf("BlendAlpha = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlendAdditiveSaturates(t *testing.T) {
	got := BlendAdditive.Blend(RGB(200, 10, 0), RGB(100, 5, 0))
	if got.R != 255 {
		t.Errorf("R = %d, want saturated 255", got.R)
	}
	if got.G != 15 {
		t.Errorf("G = %d, want 15", got.G)
	}
}

func TestBlendSubtractiveSaturates(t *testing.T) {
	got := BlendSubtractive.Blend(RGB(50, 200, 0), RGB(100, 50, 0))
	if got.R != 0 {
		t.Errorf("R = %d, want saturated 0", got.R)
	}
	if got.G != 150 {
		t.Errorf("G = %d, want 150", got.G)
	}
}

func TestBlendMultiplicative(t *testing.T) {
	got := BlendMultiplicative.Blend(RGB(128, 255, 0), RGB(255, 128, 200))
	if got.R != 128 {
		t.Errorf("R = %d, want 128", got.R)
	}
	if got.G != 128 {
		t.Errorf("G = %d, want 128", got.G)
	}
	if got.B != 0 {
		t.Errorf("B = %d, want 0", got.B)
	}
}

func TestBlendScreen(t *testing.T) {
	// Screen with white always yields white, with black keeps destination.
	if got := BlendScreen.Blend(RGB(37, 91, 200), White); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("screen with white = %v, want white", got)
	}
	if got := BlendScreen.Blend(RGB(37, 91, 200), Black); got.R != 37 || got.G != 91 || got.B != 200 {
		t.Errorf("screen with black = %v, want destination", got)
	}
}

func TestBlendOverlay(t *testing.T) {
	// Below 50% destination luminance the channel multiplies.
	got := BlendOverlay.Blend(RGB(64, 64, 64), RGB(128, 128, 128))
	want := uint8(2 * 64 * 128 / 255)
	if got.R != want {
		t.Errorf("dark overlay R = %d, want %d", got.R, want)
	}

	// Above 50% the channel screens.
	got = BlendOverlay.Blend(RGB(192, 192, 192), RGB(128, 128, 128))
	want = uint8(255 - 2*(255-192)*(255-128)/255)
	if got.R != want {
		t.Errorf("light overlay R = %d, want %d", got.R, want)
	}
}

func TestParseBlendMode(t *testing.T) {
	tests := []struct {
		s       string
		want    BlendMode
		wantErr bool
	}{
		{"none", BlendNone, false},
		{"alpha", BlendAlpha, false},
		{"additive", BlendAdditive, false},
		{"subtractive", BlendSubtractive, false},
		{"multiplicative", BlendMultiplicative, false},
		{"screen", BlendScreen, false},
		{"overlay", BlendOverlay, false},
		{"ALPHA", BlendNone, true}, // case-sensitive
		{"", BlendNone, true},
		{"invalid", BlendNone, true},
	}

	for _, tt := range tests {
		got, err := ParseBlendMode(tt.s)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBlendMode(%q) error = %v, wantErr %v", tt.s, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseBlendMode(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestBlendModeString(t *testing.T) {
	for m, name := range blendNames {
		if m.String() != name {
			t.Errorf("String() = %q, want %q", m.String(), name)
		}
	}
	if BlendMode(99).String() != "unknown" {
		t.Errorf("unknown mode String() = %q", BlendMode(99).String())
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		s       string
		want    Color
		wantErr bool
	}{
		{"#ff0044", Color{255, 0, 68, 255}, false},
		{"ff0044", Color{255, 0, 68, 255}, false},
		{"#ff004480", Color{255, 0, 68, 128}, false},
		{"#f04", Color{255, 0, 68, 255}, false},
		{"#gg0044", Color{}, true},
		{"#ff00", Color{}, true},
		{"", Color{}, true},
	}

	for _, tt := range tests {
		got, err := ParseHex(tt.s)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.s, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := Color{R: 18, G: 52, B: 86, A: 255}
	got, err := ParseHex(c.Hex())
	if err != nil {
		t.Fatalf("ParseHex(Hex()) failed: %v", err)
	}
	if got != c {
		t.Errorf("round trip = %v, want %v", got, c)
	}
}
