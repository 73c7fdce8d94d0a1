package filter

import (
	"strconv"
	"strings"

	"github.com/s0up4200/bgmbot/bangumi"
)

// Env is the evaluation environment exposed to filter expressions.
// Field names inside expressions use the expr tags, e.g.
//
//	score >= 8 and HasTag("百合") and year > 2015
type Env struct {
	ID     int64    `expr:"id"`
	Name   string   `expr:"name"`
	NameCN string   `expr:"name_cn"`
	Type   int64    `expr:"type"`
	Date   string   `expr:"date"`
	Year   int      `expr:"year"`
	Score  float64  `expr:"score"`
	Rank   int64    `expr:"rank"`
	Votes  int64    `expr:"votes"`
	Tags   []string `expr:"tags"`
	Gender string   `expr:"gender"`
	Career []string `expr:"career"`
}

// NewEnv extracts the filterable fields of an entity.
// Missing fields keep their zero value.
func NewEnv(e bangumi.Entity) Env {
	env := Env{
		ID:     e.ID(),
		Name:   e.String("name", ""),
		NameCN: e.String("name_cn", ""),
		Type:   e.Int("type", 0),
		Date:   e.String("date", ""),
		Score:  e.Float("rating.score", 0),
		Rank:   e.Int("rating.rank", e.Int("rank", 0)),
		Votes:  e.Int("rating.total", 0),
		Gender: e.String("gender", ""),
		Career: e.Strings("career"),
	}

	for _, tag := range e.Array("tags") {
		if name := tag.String("name", ""); name != "" {
			env.Tags = append(env.Tags, name)
		}
	}

	if len(env.Date) >= 4 {
		if year, err := strconv.Atoi(env.Date[:4]); err == nil {
			env.Year = year
		}
	}

	return env
}

// HasTag reports whether the entity carries the tag, ignoring case
func (e Env) HasTag(name string) bool {
	for _, tag := range e.Tags {
		if strings.EqualFold(tag, name) {
			return true
		}
	}
	return false
}

// HasCareer reports whether a person lists the career, ignoring case
func (e Env) HasCareer(career string) bool {
	for _, c := range e.Career {
		if strings.EqualFold(c, career) {
			return true
		}
	}
	return false
}

// NameContains matches substr against both the original and Chinese name
func (e Env) NameContains(substr string) bool {
	substr = strings.ToLower(substr)
	return strings.Contains(strings.ToLower(e.Name), substr) ||
		strings.Contains(strings.ToLower(e.NameCN), substr)
}
