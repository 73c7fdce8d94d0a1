package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/s0up4200/bgmbot/bangumi"
)

// Display defaults for fields missing from a payload
const (
	UnknownName     = "未知名称"
	UnknownDate     = "未知日期"
	NoSummary       = "暂无简介"
	UnknownValue    = "未知"
	NoSign          = "暂无签名"
	UnknownUsername = "未知用户名"
	NoTags          = "无"
)

// MaxTags is the number of subject tags shown
const MaxTags = 5

// Formatter renders API payloads as chat-ready Markdown-like text.
// It holds no state beyond its lookup tables, so the same payload always
// renders to the same string.
type Formatter struct {
	subjectTypes   TypeMap
	characterTypes TypeMap
	personTypes    TypeMap
	userGroups     TypeMap
}

// New creates a formatter with the standard label tables
func New() *Formatter {
	return &Formatter{
		subjectTypes:   SubjectTypes,
		characterTypes: CharacterTypes,
		personTypes:    PersonTypes,
		userGroups:     UserGroups,
	}
}

// Entity renders any single entity and returns its image URL, empty when
// the payload has none.
func (f *Formatter) Entity(kind bangumi.Kind, e bangumi.Entity) (string, string) {
	switch kind {
	case bangumi.KindSubject:
		return f.Subject(e), e.String("images.large", "")
	case bangumi.KindCharacter:
		return f.Character(e), e.String("images.large", "")
	case bangumi.KindPerson:
		return f.Person(e), e.String("images.large", "")
	case bangumi.KindUser:
		return f.User(e)
	default:
		return e.Raw(), ""
	}
}

// Subject renders a subject detail payload
func (f *Formatter) Subject(e bangumi.Entity) string {
	name := e.NonEmpty("name", UnknownName)
	nameCN := e.NonEmpty("name_cn", name)

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n", nameCN)
	fmt.Fprintf(&sb, "原名: %s\n", name)
	fmt.Fprintf(&sb, "类型: %s | 日期: %s\n",
		f.subjectTypes.Label(e.Int("type", 2)),
		e.NonEmpty("date", UnknownDate))

	fmt.Fprintf(&sb, "评分: ⭐ %s (基于%d人评分)",
		formatScore(e.Float("rating.score", 0)),
		e.Int("rating.total", 0))
	if rank := subjectRank(e); rank > 0 {
		fmt.Fprintf(&sb, " | 排名: #%d", rank)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "标签: %s\n", joinTags(e))
	fmt.Fprintf(&sb, "ID: `%s`\n", entityID(e))
	sb.WriteString("---\n")
	sb.WriteString(StripMarkup(e.NonEmpty("summary", NoSummary)))

	return sb.String()
}

// Character renders a character detail payload
func (f *Formatter) Character(e bangumi.Entity) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n", e.NonEmpty("name", UnknownName))
	fmt.Fprintf(&sb, "类型: %s | 性别: %s\n",
		f.characterTypes.Label(e.Int("type", 1)),
		e.NonEmpty("gender", UnknownValue))
	fmt.Fprintf(&sb, "ID: `%s`\n", entityID(e))
	sb.WriteString("---\n")
	sb.WriteString(StripMarkup(e.NonEmpty("summary", NoSummary)))
	return sb.String()
}

// Person renders a person detail payload
func (f *Formatter) Person(e bangumi.Entity) string {
	career := strings.Join(e.Strings("career"), ", ")
	if career == "" {
		career = UnknownValue
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n", e.NonEmpty("name", UnknownName))
	fmt.Fprintf(&sb, "类型: %s | 职业: %s\n", f.personTypes.Label(e.Int("type", 1)), career)
	fmt.Fprintf(&sb, "ID: `%s`\n", entityID(e))
	sb.WriteString("---\n")
	sb.WriteString(StripMarkup(e.NonEmpty("summary", NoSummary)))
	return sb.String()
}

// User renders a user payload and returns the large avatar URL alongside
func (f *Formatter) User(e bangumi.Entity) (string, string) {
	username := e.NonEmpty("username", UnknownUsername)
	nickname := e.NonEmpty("nickname", username)

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s (@%s)**\n", nickname, username)
	fmt.Fprintf(&sb, "用户组: %s\n", f.userGroups.Label(e.Int("user_group", 10)))
	fmt.Fprintf(&sb, "签名: %s\n", StripMarkup(e.NonEmpty("sign", NoSign)))
	fmt.Fprintf(&sb, "ID: `%s`", entityID(e))

	return sb.String(), e.String("avatar.large", "")
}

// listStyle describes how one kind renders inside a result list
type listStyle struct {
	header   string
	empty    string
	types    TypeMap
	typeCode int64
	withDate bool
}

func (f *Formatter) listStyle(kind bangumi.Kind) listStyle {
	switch kind {
	case bangumi.KindCharacter:
		return listStyle{header: "找到以下角色：", empty: "🔍 未找到相关角色", types: f.characterTypes, typeCode: 1}
	case bangumi.KindPerson:
		return listStyle{header: "找到以下人物：", empty: "🔍 未找到相关人物", types: f.personTypes, typeCode: 1}
	default:
		return listStyle{header: "找到以下条目：", empty: "🔍 未找到相关条目", types: f.subjectTypes, typeCode: 2, withDate: true}
	}
}

// List renders up to limit entries of a search page, numbered from 1.
// A limit <= 0 renders every entry on the page.
func (f *Formatter) List(kind bangumi.Kind, page *bangumi.Page, limit int) string {
	style := f.listStyle(kind)
	if page.IsEmpty() {
		return style.empty
	}

	entries := page.Data
	if limit <= 0 {
		limit = len(entries)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	lines := make([]string, 0, len(entries)+2)
	lines = append(lines, style.header+"\n")
	for i, item := range entries {
		label := style.types.Label(item.Int("type", style.typeCode))
		if style.withDate {
			lines = append(lines, fmt.Sprintf("%d. %s (%s, %s) ID: `%s`",
				i+1, listName(kind, item), label, item.NonEmpty("date", UnknownDate), entityID(item)))
			continue
		}
		lines = append(lines, fmt.Sprintf("%d. %s (%s) ID: `%s`", i+1, listName(kind, item), label, entityID(item)))
	}

	if page.Total > limit {
		lines = append(lines, fmt.Sprintf("\n共找到 %d 个结果, 显示前 %d 个", page.Total, limit))
	}

	return strings.Join(lines, "\n")
}

// listName prefers the Chinese title for subjects
func listName(kind bangumi.Kind, item bangumi.Entity) string {
	name := item.NonEmpty("name", UnknownName)
	if kind == bangumi.KindSubject {
		return item.NonEmpty("name_cn", name)
	}
	return name
}

// joinTags joins the names of the first MaxTags tags, skipping blank ones
func joinTags(e bangumi.Entity) string {
	tags := e.Array("tags")
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}

	var names []string
	for _, tag := range tags {
		if name := tag.NonEmpty("name", ""); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return NoTags
	}
	return strings.Join(names, ", ")
}

// subjectRank reads rating.rank, falling back to the legacy top-level rank
func subjectRank(e bangumi.Entity) int64 {
	if rank := e.Int("rating.rank", 0); rank > 0 {
		return rank
	}
	return e.Int("rank", 0)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func entityID(e bangumi.Entity) string {
	return e.String("id", UnknownValue)
}
