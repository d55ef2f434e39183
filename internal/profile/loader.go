// Package profile implements the exercise profiles: the driver-angle
// definition, rule catalog, and scored-phase set for each recognized
// exercise. Profiles are data, loaded from an embedded .ini file the
// same way the teacher's VideoFromFrames reads MOTChallenge's
// seqinfo.ini with gopkg.in/ini.v1 — the only exercise-specific code
// outside this package is the single profile lookup at pipeline entry.
package profile

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/posecoach/core/internal/coremodel"
)

//go:embed profiles.ini
var profilesFS embed.FS

var phaseByName = map[string]coremodel.Phase{
	"ready":      coremodel.PhaseReady,
	"descending": coremodel.PhaseDescending,
	"bottom":     coremodel.PhaseBottom,
	"ascending":  coremodel.PhaseAscending,
	"top":        coremodel.PhaseTop,
	"finish":     coremodel.PhaseFinish,
}

type driverSpec struct {
	base      string
	minDeg    float64
	maxDeg    float64
	invert    bool
}

// table is the fully parsed content of profiles.ini.
type table struct {
	cfg *ini.File
}

func loadTable() (*table, error) {
	data, err := profilesFS.ReadFile("profiles.ini")
	if err != nil {
		return nil, fmt.Errorf("reading embedded profiles.ini: %w", err)
	}
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing profiles.ini: %w", err)
	}
	return &table{cfg: cfg}, nil
}

func (t *table) driver(section string) driverSpec {
	s := t.cfg.Section(section)
	return driverSpec{
		base:   s.Key("driver_angle").MustString("elbow"),
		minDeg: s.Key("driver_min_deg").MustFloat64(0),
		maxDeg: s.Key("driver_max_deg").MustFloat64(180),
		invert: s.Key("driver_invert").MustBool(false),
	}
}

func (t *table) rules(baseSection string, overrideSection string) []coremodel.Rule {
	names := strings.Split(t.cfg.Section(baseSection).Key("rules").MustString(""), ",")
	rules := make([]coremodel.Rule, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		s := t.cfg.Section(baseSection + ".rule." + name)
		lo := s.Key("lo_deg").MustFloat64(0)
		hi := s.Key("hi_deg").MustFloat64(180)

		if overrideSection != "" {
			ov := t.cfg.Section(overrideSection)
			if k, err := ov.GetKey(name + ".lo_deg"); err == nil {
				lo = k.MustFloat64(lo)
			}
			if k, err := ov.GetKey(name + ".hi_deg"); err == nil {
				hi = k.MustFloat64(hi)
			}
		}

		rules = append(rules, coremodel.Rule{
			Name:     name,
			Phases:   parsePhases(s.Key("phases").MustString("")),
			Angle:    coremodel.AngleName(s.Key("angle").MustString("")),
			LoDeg:    lo,
			HiDeg:    hi,
			Weight:   s.Key("weight").MustFloat64(1.0),
			WarnMsg:  s.Key("warn").MustString(""),
			ErrorMsg: s.Key("error").MustString(""),
		})
	}
	return rules
}

func (t *table) overriddenDriver(baseSection, overrideSection string) driverSpec {
	d := t.driver(baseSection)
	if overrideSection == "" {
		return d
	}
	ov := t.cfg.Section(overrideSection)
	d.minDeg = ov.Key("driver_min_deg").MustFloat64(d.minDeg)
	d.maxDeg = ov.Key("driver_max_deg").MustFloat64(d.maxDeg)
	return d
}

func parsePhases(csv string) map[coremodel.Phase]bool {
	set := make(map[coremodel.Phase]bool)
	for _, name := range strings.Split(csv, ",") {
		name = strings.TrimSpace(name)
		if p, ok := phaseByName[name]; ok {
			set[p] = true
		}
	}
	return set
}
