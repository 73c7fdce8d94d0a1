package format

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/bgmbot/bangumi"
)

func entity(t *testing.T, raw string) bangumi.Entity {
	t.Helper()
	e := bangumi.NewEntity([]byte(raw))
	require.False(t, e.IsZero(), "invalid fixture")
	return e
}

func TestFormatter_Subject(t *testing.T) {
	f := New()
	e := entity(t, `{
		"id": 51,
		"name": "CLANNAD",
		"name_cn": "团子大家族",
		"type": 2,
		"date": "2007-10-04",
		"rating": {"score": 8.6, "total": 12345, "rank": 42},
		"tags": [{"name":"a"},{"name":"b"},{"name":"c"},{"name":"d"},{"name":"e"},{"name":"f"}],
		"summary": "line one<br />line two <b>bold</b>"
	}`)

	want := "**团子大家族**\n" +
		"原名: CLANNAD\n" +
		"类型: 🎬 动画 | 日期: 2007-10-04\n" +
		"评分: ⭐ 8.6 (基于12345人评分) | 排名: #42\n" +
		"标签: a, b, c, d, e\n" +
		"ID: `51`\n" +
		"---\n" +
		"line one\nline two bold"

	assert.Equal(t, want, f.Subject(e))
}

func TestFormatter_SubjectDefaults(t *testing.T) {
	f := New()
	out := f.Subject(entity(t, `{"id": 1}`))

	assert.Contains(t, out, "**"+UnknownName+"**")
	assert.Contains(t, out, "原名: "+UnknownName)
	assert.Contains(t, out, "日期: "+UnknownDate)
	assert.Contains(t, out, "评分: ⭐ 0 (基于0人评分)\n", "no rank suffix without a rank")
	assert.Contains(t, out, "标签: 无")
	assert.True(t, strings.HasSuffix(out, "---\n"+NoSummary))
}

func TestFormatter_SubjectTagsCutBeforeBlanks(t *testing.T) {
	out := New().Subject(entity(t, `{"id": 1, "tags": [
		{"name":"a"},{"name":""},{"name":"c"},{"name":null},{"name":"e"},{"name":"f"}
	]}`))

	assert.Contains(t, out, "标签: a, c, e\n")
	assert.NotContains(t, out, "e, f")

	out = New().Subject(entity(t, `{"id": 1, "tags": [{"name":""},{"name":" "}]}`))
	assert.Contains(t, out, "标签: "+NoTags+"\n")
}

func TestFormatter_SubjectLegacyRank(t *testing.T) {
	out := New().Subject(entity(t, `{"id": 1, "rank": 7}`))
	assert.Contains(t, out, "| 排名: #7")
}

func TestFormatter_UnknownTypeCodes(t *testing.T) {
	f := New()

	assert.Contains(t, f.Subject(entity(t, `{"type": 99}`)), "类型: 🎬 动画")
	assert.Contains(t, f.Character(entity(t, `{"type": 99}`)), "类型: 👤 角色")
	assert.Contains(t, f.Person(entity(t, `{"type": 99}`)), "类型: 👤 个人")

	text, _ := f.User(entity(t, `{"user_group": 99}`))
	assert.Contains(t, text, "用户组: 用户")
}

func TestFormatter_Character(t *testing.T) {
	f := New()

	out := f.Character(entity(t, `{"id": 7, "name": "古河渚", "type": 1, "gender": "female", "summary": "a<br>b"}`))
	assert.Equal(t, "**古河渚**\n类型: 👤 角色 | 性别: female\nID: `7`\n---\na\nb", out)

	out = f.Character(entity(t, `{"id": 8, "type": 4, "gender": null}`))
	assert.Contains(t, out, "类型: 🏢 组织 | 性别: 未知")
	assert.Contains(t, out, "**"+UnknownName+"**")
}

func TestFormatter_Person(t *testing.T) {
	f := New()

	out := f.Person(entity(t, `{"id": 3, "name": "中原麻衣", "type": 1, "career": ["seiyu", "artist"]}`))
	assert.Equal(t, "**中原麻衣**\n类型: 👤 个人 | 职业: seiyu, artist\nID: `3`\n---\n"+NoSummary, out)

	out = f.Person(entity(t, `{"id": 4, "type": 2, "career": []}`))
	assert.Contains(t, out, "类型: 🏢 公司 | 职业: 未知")
}

func TestFormatter_User(t *testing.T) {
	f := New()

	text, avatar := f.User(entity(t, `{
		"id": 1,
		"username": "sai",
		"nickname": "Sai",
		"user_group": 1,
		"sign": "<span>hello</span>",
		"avatar": {"large": "https://lain.bgm.tv/pic/user/l/icon.jpg"}
	}`))
	assert.Equal(t, "**Sai (@sai)**\n用户组: 管理员\n签名: hello\nID: `1`", text)
	assert.Equal(t, "https://lain.bgm.tv/pic/user/l/icon.jpg", avatar)

	text, avatar = f.User(entity(t, `{"username": "bob"}`))
	assert.Contains(t, text, "**bob (@bob)**")
	assert.Contains(t, text, "签名: "+NoSign)
	assert.Empty(t, avatar)
}

func TestFormatter_Entity(t *testing.T) {
	f := New()
	e := entity(t, `{"id": 1, "images": {"large": "https://img/l.jpg"}, "avatar": {"large": "https://img/a.jpg"}}`)

	for _, kind := range []bangumi.Kind{bangumi.KindSubject, bangumi.KindCharacter, bangumi.KindPerson} {
		_, img := f.Entity(kind, e)
		assert.Equal(t, "https://img/l.jpg", img, kind)
	}

	_, img := f.Entity(bangumi.KindUser, e)
	assert.Equal(t, "https://img/a.jpg", img)

	_, img = f.Entity(bangumi.KindSubject, entity(t, `{"id": 1, "images": null}`))
	assert.Empty(t, img)
}

func page(n, total int) *bangumi.Page {
	p := &bangumi.Page{Total: total}
	for i := 1; i <= n; i++ {
		p.Data = append(p.Data, bangumi.NewEntity([]byte(fmt.Sprintf(`{"id": %d, "name": "n%d", "type": 2, "date": "2020-01-0%d"}`, i, i, i%10))))
	}
	return p
}

func TestFormatter_List(t *testing.T) {
	f := New()

	out := f.List(bangumi.KindSubject, page(8, 12), 5)
	lines := strings.Split(out, "\n")

	assert.Equal(t, "找到以下条目：", lines[0])
	assert.Equal(t, "", lines[1])
	numbered := 0
	for _, line := range lines {
		if len(line) > 0 && line[0] >= '1' && line[0] <= '9' && strings.Contains(line, ". ") {
			numbered++
		}
	}
	assert.Equal(t, 5, numbered)
	assert.Equal(t, "1. n1 (🎬 动画, 2020-01-01) ID: `1`", lines[2])
	assert.Equal(t, "共找到 12 个结果, 显示前 5 个", lines[len(lines)-1])
}

func TestFormatter_ListNoSuffixWhenAllShown(t *testing.T) {
	out := New().List(bangumi.KindSubject, page(3, 3), 5)
	assert.NotContains(t, out, "共找到")
}

func TestFormatter_ListUnlimited(t *testing.T) {
	out := New().List(bangumi.KindPerson, page(3, 3), 0)
	assert.Contains(t, out, "3. n3 (🏢 公司) ID: `3`")
	assert.NotContains(t, out, "共找到")
}

func TestFormatter_ListEmpty(t *testing.T) {
	f := New()

	assert.Equal(t, "🔍 未找到相关条目", f.List(bangumi.KindSubject, &bangumi.Page{}, 5))
	assert.Equal(t, "🔍 未找到相关角色", f.List(bangumi.KindCharacter, &bangumi.Page{Total: 3}, 5))
	assert.Equal(t, "🔍 未找到相关人物", f.List(bangumi.KindPerson, nil, 5))
}

func TestFormatter_ListKinds(t *testing.T) {
	f := New()
	p := &bangumi.Page{
		Data: []bangumi.Entity{
			bangumi.NewEntity([]byte(`{"id": 9, "name": "Mecha", "type": 2}`)),
			bangumi.NewEntity([]byte(`{"id": 10, "name_cn": "无名"}`)),
		},
		Total: 2,
	}

	chars := f.List(bangumi.KindCharacter, p, 5)
	assert.True(t, strings.HasPrefix(chars, "找到以下角色：\n\n"))
	assert.Contains(t, chars, "1. Mecha (🤖 机体) ID: `9`")
	assert.Contains(t, chars, "2. "+UnknownName+" (👤 角色) ID: `10`")

	subjects := f.List(bangumi.KindSubject, p, 5)
	assert.Contains(t, subjects, "2. 无名 (🎬 动画, "+UnknownDate+") ID: `10`")
}

func TestFormatter_Idempotent(t *testing.T) {
	f := New()
	e := entity(t, `{"id": 5, "name": "x", "summary": "<p>a</p><br/>b", "tags": [{"name": "t"}]}`)
	p := page(4, 9)

	for _, kind := range []bangumi.Kind{bangumi.KindSubject, bangumi.KindCharacter, bangumi.KindPerson, bangumi.KindUser} {
		text1, img1 := f.Entity(kind, e)
		text2, img2 := f.Entity(kind, e)
		assert.Equal(t, text1, text2)
		assert.Equal(t, img1, img2)
		assert.Equal(t, f.List(kind, p, 2), f.List(kind, p, 2))
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a<br>b", "a\nb"},
		{"a<BR/>b", "a\nb"},
		{"a<br />b", "a\nb"},
		{"<p>text</p>", "text"},
		{"<a href=\"x\">link</a> tail", "link tail"},
		{"1 < 2", "1 < 2"},
		{"dangling <b", "dangling <b"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripMarkup(tt.in), tt.in)
	}
}
