package mem

import "testing"

func TestPageAddressRoundTrip(t *testing.T) {
	page := PageFromAddress(0x00400042)
	if exp := Page(0x400); page != exp {
		t.Fatalf("expected page %x; got %x", exp, page)
	}
	if exp := uint32(0x00400000); page.Address() != exp {
		t.Fatalf("expected page address %x; got %x", exp, page.Address())
	}
}

func TestFrameAddressRoundTrip(t *testing.T) {
	frame := FrameFromAddress(0xaaaaa123)
	if exp := Frame(0xaaaaa); frame != exp {
		t.Fatalf("expected frame %x; got %x", exp, frame)
	}
	if exp := uint32(0xaaaaa000); frame.Address() != exp {
		t.Fatalf("expected frame address %x; got %x", exp, frame.Address())
	}
}
