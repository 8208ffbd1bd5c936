package site

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_validate01(tst *testing.T) {

	chk.PrintTitle("validate01. site invariants")

	s := New(15, Wall)
	if err := s.Validate(15); err == nil {
		tst.Errorf("expected error for WALL site with no WALL link")
	}
	s.SetLink(3, Link{Kind: LinkWall, Distance: 0.5})
	if err := s.Validate(15); err != nil {
		tst.Errorf("unexpected error: %v", err)
	}

	s2 := New(15, Inlet)
	s2.IoletIndex = 2
	s2.SetLink(5, Link{Kind: LinkInlet, Distance: 0.8, IoletIndex: 1})
	if err := s2.Validate(15); err == nil {
		tst.Errorf("expected error for mismatched iolet index")
	}

	s3 := New(15, BulkFluid)
	if err := s3.Validate(15); err != nil {
		tst.Errorf("bulk fluid site should validate cleanly: %v", err)
	}
}

func Test_hasiolet01(tst *testing.T) {

	chk.PrintTitle("hasiolet01")

	cases := map[Type]bool{
		BulkFluid:  false,
		Wall:       false,
		Inlet:      true,
		Outlet:     true,
		InletWall:  true,
		OutletWall: true,
	}
	for t, want := range cases {
		if t.HasIolet() != want {
			tst.Errorf("%v.HasIolet() = %v, want %v", t, t.HasIolet(), want)
		}
	}
}
