package config_test

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/hemelb-go/corelb/config"
)

// Test_validate01 checks spec.md S7's Setup-error checks this package
// owns: tau<=0.5 and unknown kernel/boundary names must be rejected.
func Test_validate01(t *testing.T) {
	chk.PrintTitle("validate01")

	var c config.Config
	c.SetDefaults()
	c.Tau = 0.5
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for tau == 0.5")
	}

	c.Tau = 0.8
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error for a valid config: %v", err)
	}

	c.Kernel = "NotAKernel"
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for an unknown kernel name")
	}
}

// Test_kernelprms01 checks that KernelPrms converts the JSON scalar map
// into fun.Prms with matching names and values.
func Test_kernelprms01(t *testing.T) {
	chk.PrintTitle("kernelprms01")

	var c config.Config
	c.SetDefaults()
	c.Tau = 0.8
	c.KernelParams = map[string]float64{"lambda": 0.25}
	prms := c.KernelPrms()
	if len(prms) != 1 || prms[0].N != "lambda" || prms[0].V != 0.25 {
		t.Fatalf("unexpected KernelPrms output: %+v", prms)
	}
}
