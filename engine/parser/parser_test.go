package parser

import (
	"reflect"
	"testing"

	"github.com/kangjianbin/mengde/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / whitespace
		{
			name:  "empty string",
			input: "",
			want:  types.Intent{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  types.Intent{},
		},

		// Bare verbs
		{
			name:  "units",
			input: "units",
			want:  types.Intent{Verb: "units"},
		},
		{
			name:  "end turn → end",
			input: "end turn",
			want:  types.Intent{Verb: "end"},
		},
		{
			name:  "e → end",
			input: "E",
			want:  types.Intent{Verb: "end"},
		},

		// Moves
		{
			name:  "move with coordinates",
			input: "move guan yu to 3 4",
			want:  types.Intent{Verb: "move", Object: "guan yu", Coords: []int{3, 4}},
		},
		{
			name:  "m alias and parenthesised coordinates",
			input: "m liubei to (2, 5)",
			want:  types.Intent{Verb: "move", Object: "liubei", Coords: []int{2, 5}},
		},
		{
			name:  "moves query",
			input: "reach zhangfei",
			want:  types.Intent{Verb: "moves", Object: "zhangfei"},
		},

		// Attacks
		{
			name:  "attack in place",
			input: "attack guanyu at rebel",
			want:  types.Intent{Verb: "attack", Object: "guanyu", Target: "rebel"},
		},
		{
			name:  "attack after moving",
			input: "attack the guanyu at the rebel from 2 3",
			want:  types.Intent{Verb: "attack", Object: "guanyu", Target: "rebel", Coords: []int{2, 3}},
		},
		{
			name:  "a → attack",
			input: "a liubei at rebel leader",
			want:  types.Intent{Verb: "attack", Object: "liubei", Target: "rebel leader"},
		},

		// Magic
		{
			name:  "cast",
			input: "cast fire zhugeliang at rebel",
			want:  types.Intent{Verb: "cast", Object: "zhugeliang", Target: "rebel", Extra: []string{"fire"}},
		},
		{
			name:  "cast after moving",
			input: "spell heal zhugeliang on liubei from 1 1",
			want: types.Intent{Verb: "cast", Object: "zhugeliang", Target: "liubei",
				Coords: []int{1, 1}, Extra: []string{"heal"}},
		},

		// Stay
		{
			name:  "stay",
			input: "wait liubei",
			want:  types.Intent{Verb: "stay", Object: "liubei"},
		},
		{
			name:  "stay elsewhere",
			input: "stay liubei 0 2",
			want:  types.Intent{Verb: "stay", Object: "liubei", Coords: []int{0, 2}},
		},

		// Deployment
		{
			name:  "deploy",
			input: "pick guanyu",
			want:  types.Intent{Verb: "deploy", Object: "guanyu"},
		},
		{
			name:  "start",
			input: "begin",
			want:  types.Intent{Verb: "start"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q)\n got  %+v\n want %+v", tt.input, got, tt.want)
			}
		})
	}
}
