package resolve

import (
	"errors"
	"testing"

	"github.com/kangjianbin/mengde/engine/magic"
	"github.com/kangjianbin/mengde/engine/unit"
	"github.com/kangjianbin/mengde/types"
)

type field struct{ reg unit.Registry }

func (f *field) ForEachUnit(fn func(*unit.Unit)) { f.reg.ForEach(fn) }

func testTemplates() map[string]*unit.HeroTemplate {
	class := &unit.Class{ID: "infantry", Move: 4}
	out := map[string]*unit.HeroTemplate{}
	for id, name := range map[string]string{
		"liubei":       "Liu Bei",
		"guanyu":       "Guan Yu",
		"rebel":        "Rebel",
		"rebel_leader": "Rebel Chief",
	} {
		out[id] = &unit.HeroTemplate{ID: id, Name: name, Class: class, Stat: types.Attribute{10, 10, 10, 10, 10}}
	}
	return out
}

// testField deploys Liu Bei #0, Guan Yu #1, Rebel #2, Rebel #3 and Rebel
// Chief #4.
func testField() *field {
	tpls := testTemplates()
	f := &field{}
	for i, id := range []string{"liubei", "guanyu", "rebel", "rebel", "rebel_leader"} {
		force := types.ForceOwn
		if i >= 2 {
			force = types.ForceEnemy
		}
		f.reg.Deploy(unit.New(unit.NewHero(tpls[id], 1), force, types.Vec2D{X: i}))
	}
	return f
}

func TestUnit_ByName_CaseInsensitive(t *testing.T) {
	f := testField()
	for _, name := range []string{"Liu Bei", "liu bei", "liubei", "LIUBEI", "bei"} {
		u, err := Unit(f, name)
		if err != nil {
			t.Fatalf("Unit(%q): %v", name, err)
		}
		if u.ID() != 0 {
			t.Errorf("Unit(%q) = #%d, want #0", name, u.ID())
		}
	}
}

func TestUnit_ByHandle(t *testing.T) {
	f := testField()
	u, err := Unit(f, "#3")
	if err != nil || u.ID() != 3 {
		t.Fatalf("Unit(#3) = %v, %v", u, err)
	}
	var nf *NotFoundError
	if _, err := Unit(f, "#9"); !errors.As(err, &nf) {
		t.Errorf("Unit(#9) = %v, want NotFoundError", err)
	}
}

func TestUnit_UnderscoreNormalization(t *testing.T) {
	f := testField()
	u, err := Unit(f, "rebel leader")
	if err != nil || u.ID() != 4 {
		t.Fatalf("Unit(rebel leader) = %v, %v", u, err)
	}
}

func TestUnit_Ambiguity(t *testing.T) {
	f := testField()
	_, err := Unit(f, "rebel")
	var ae *AmbiguityError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AmbiguityError, got %v", err)
	}
	// "Rebel Chief" matches on its first word too.
	if len(ae.Candidates) != 3 || ae.Candidates[0] != "Rebel #2" {
		t.Errorf("candidates = %v", ae.Candidates)
	}
}

func TestUnit_DeadUnitsAreInvisible(t *testing.T) {
	f := testField()
	f.reg.Kill(1)
	var nf *NotFoundError
	if _, err := Unit(f, "guanyu"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Error() != `no unit called "guanyu"` {
		t.Errorf("message = %q", nf.Error())
	}
}

func TestResolve_ObjectAndTarget(t *testing.T) {
	f := testField()
	res, err := Resolve(f, types.Intent{Verb: "attack", Object: "guan yu", Target: "rebel chief"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Object.ID() != 1 || res.Target.ID() != 4 {
		t.Errorf("resolved #%d at #%d", res.Object.ID(), res.Target.ID())
	}
}

func TestResolve_NoObjectOrTarget(t *testing.T) {
	res, err := Resolve(testField(), types.Intent{Verb: "end"})
	if err != nil || res.Object != nil || res.Target != nil {
		t.Errorf("Resolve(end) = %+v, %v", res, err)
	}
}

func TestHero(t *testing.T) {
	tpls := testTemplates()
	roster := []*unit.Hero{unit.NewHero(tpls["liubei"], 3), unit.NewHero(tpls["guanyu"], 3)}

	h, err := Hero(roster, "guan yu")
	if err != nil || h.ID() != "guanyu" {
		t.Fatalf("Hero(guan yu) = %v, %v", h, err)
	}
	var nf *NotFoundError
	if _, err := Hero(roster, "zhangfei"); !errors.As(err, &nf) || nf.Kind != "hero" {
		t.Errorf("Hero(zhangfei) = %v", err)
	}
}

func TestMagic(t *testing.T) {
	known := []*magic.Magic{
		{ID: "fire", Name: "Fire"},
		{ID: "heal", Name: "Heal"},
	}
	m, err := Magic(known, "HEAL")
	if err != nil || m.ID != "heal" {
		t.Fatalf("Magic(HEAL) = %v, %v", m, err)
	}
	if _, err := Magic(known, "blizzard"); err == nil {
		t.Error("unknown spell resolved")
	}
}
