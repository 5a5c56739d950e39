package analysis

import (
	"testing"
)

func TestTTestPValue(t *testing.T) {
	d := NewDistributions()

	if p := d.TTestPValue(0, 10); !almostEqual(p, 1.0, 1e-12) {
		t.Errorf("p(t=0) = %g, want 1", p)
	}
	// Two-tailed: symmetric in the sign of t
	if p1, p2 := d.TTestPValue(2.5, 10), d.TTestPValue(-2.5, 10); !almostEqual(p1, p2, 1e-12) {
		t.Errorf("p(2.5) = %g, p(-2.5) = %g, want equal", p1, p2)
	}
	// Monotone decreasing in |t|
	if p1, p2 := d.TTestPValue(1, 10), d.TTestPValue(2, 10); p2 >= p1 {
		t.Errorf("p(2) = %g not below p(1) = %g", p2, p1)
	}
	// Converges to the normal tail for large df
	if p := d.TTestPValue(1.96, 10000); !almostEqual(p, 0.05, 1e-3) {
		t.Errorf("p(1.96, df=10000) = %g, want ~0.05", p)
	}
	// Degenerate df is a non-result, not a panic
	if p := d.TTestPValue(3, 0); p != 1.0 {
		t.Errorf("p with df=0 is %g, want 1", p)
	}
}

func TestTQuantile(t *testing.T) {
	d := NewDistributions()

	// Quantile inverts the CDF: t such that two-tailed p = 0.05 at df 8
	q := d.TQuantile(0.975, 8)
	if !almostEqual(d.TTestPValue(q, 8), 0.05, 1e-9) {
		t.Errorf("TTestPValue(TQuantile(0.975, 8)) = %g, want 0.05", d.TTestPValue(q, 8))
	}
	if !almostEqual(d.TQuantile(0.5, 8), 0, 1e-9) {
		t.Errorf("median quantile = %g, want 0", d.TQuantile(0.5, 8))
	}
}

func TestFTestPValue(t *testing.T) {
	d := NewDistributions()

	// For d1=2 the survival function is closed form: (1 + F/3)^-3
	if p := d.FTestPValue(3, 2, 6); !almostEqual(p, 0.125, 1e-6) {
		t.Errorf("p(F=3; 2,6) = %g, want 0.125", p)
	}
	if p := d.FTestPValue(0, 2, 6); !almostEqual(p, 1.0, 1e-9) {
		t.Errorf("p(F=0) = %g, want 1", p)
	}
	if p := d.FTestPValue(5, 0, 6); p != 1.0 {
		t.Errorf("p with df1=0 is %g, want 1", p)
	}
}

func TestChiSquarePValue(t *testing.T) {
	d := NewDistributions()

	// chi^2(2) survival is exp(-x/2): p(5.991) ~ 0.05
	if p := d.ChiSquarePValue(5.991, 2); !almostEqual(p, 0.05, 1e-3) {
		t.Errorf("p(5.991; 2) = %g, want ~0.05", p)
	}
	if p := d.ChiSquarePValue(0, 3); !almostEqual(p, 1.0, 1e-9) {
		t.Errorf("p(0) = %g, want 1", p)
	}
}

func TestNormalCDFAndQuantile(t *testing.T) {
	d := NewDistributions()

	if p := d.NormalCDF(0); !almostEqual(p, 0.5, 1e-12) {
		t.Errorf("CDF(0) = %g, want 0.5", p)
	}
	if q := d.NormalQuantile(0.975); !almostEqual(q, 1.959964, 1e-5) {
		t.Errorf("quantile(0.975) = %g, want ~1.96", q)
	}
	// Quantile inverts the CDF
	if p := d.NormalCDF(d.NormalQuantile(0.3)); !almostEqual(p, 0.3, 1e-9) {
		t.Errorf("CDF(quantile(0.3)) = %g, want 0.3", p)
	}
}
