package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	d := Default()
	if d.DCF.DiscountRate <= d.DCF.GrowthRate {
		t.Error("default DCF discount rate must exceed the growth rate")
	}
	if d.DDM.DiscountRate <= d.DDM.DividendGrowthRate {
		t.Error("default DDM discount rate must exceed the dividend growth rate")
	}
	if d.PeerLimit <= 0 {
		t.Error("default peer limit must be positive")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	content := []byte("dcf:\n  growth_rate: 0.08\n  discount_rate: 0.12\n  projection_years: 7\npeer_limit: 4\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.DCF.GrowthRate != 0.08 || d.DCF.DiscountRate != 0.12 || d.DCF.ProjectionYears != 7 {
		t.Errorf("DCF overrides not applied: %+v", d.DCF)
	}
	if d.PeerLimit != 4 {
		t.Errorf("PeerLimit expected 4, got %d", d.PeerLimit)
	}
	// Untouched sections keep their built-in values.
	if d.DDM.DiscountRate != Default().DDM.DiscountRate {
		t.Errorf("DDM defaults should survive a partial overlay, got %+v", d.DDM)
	}
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected an error for a missing file")
	}
	if d.DCF != Default().DCF {
		t.Error("missing file should still return the built-in defaults")
	}
}

func TestParseScreens(t *testing.T) {
	// HJSON: comments, unquoted keys, no commas.
	data := []byte(`
[
  {
    name: value
    description: cheap and solid
    criteria: {
      pe_ratio: { min: 1, max: 15 }  // profitable but cheap
      market_cap: { min: 1e9 }
    }
    limit: 25
  }
  {
    name: growth
    criteria: {
      revenue_growth: { min: 0.10 }
      sectors: ["Technology"]
    }
  }
]
`)
	screens, err := ParseScreens(data)
	if err != nil {
		t.Fatalf("ParseScreens failed: %v", err)
	}
	if len(screens) != 2 {
		t.Fatalf("expected 2 screens, got %d", len(screens))
	}

	value := screens[0]
	if value.Name != "value" || value.Limit != 25 {
		t.Errorf("unexpected first screen: %+v", value)
	}
	if value.Criteria.PERatio.Max == nil || *value.Criteria.PERatio.Max != 15 {
		t.Error("pe_ratio.max expected 15")
	}
	if value.Criteria.MarketCap.Min == nil || *value.Criteria.MarketCap.Min != 1e9 {
		t.Error("market_cap.min expected 1e9")
	}

	growth := screens[1]
	if growth.Criteria.RevenueGrowth.Min == nil || *growth.Criteria.RevenueGrowth.Min != 0.10 {
		t.Error("revenue_growth.min expected 0.10")
	}
	if len(growth.Criteria.Sectors) != 1 || growth.Criteria.Sectors[0] != "Technology" {
		t.Errorf("sectors expected [Technology], got %v", growth.Criteria.Sectors)
	}
}

func TestParseScreens_Invalid(t *testing.T) {
	if _, err := ParseScreens([]byte("{ not a list }")); err == nil {
		t.Error("expected an error for a non-list document")
	}
}
