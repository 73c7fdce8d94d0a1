package bot

import (
	"strings"
	"unicode"

	"github.com/s0up4200/bgmbot/bangumi"
)

// action is what a command does with its argument
type action int

const (
	actionResolve action = iota
	actionList
)

// Command describes one chat command
type Command struct {
	Name    string
	Aliases []string
	Usage   string
	// Noun is used in not-found messages
	Noun string
	Kind bangumi.Kind

	action      action
	forwardName string
}

var commands = []Command{
	{Name: "bgm搜索", Aliases: []string{"bgm"}, Usage: "/bgm搜索 <关键词|ID>", Noun: "条目", Kind: bangumi.KindSubject, action: actionResolve},
	{Name: "bgm模糊", Usage: "/bgm模糊 <关键词>", Noun: "条目", Kind: bangumi.KindSubject, action: actionList, forwardName: "模糊搜索"},
	{Name: "bgm角色搜索", Usage: "/bgm角色搜索 <关键词>", Noun: "角色", Kind: bangumi.KindCharacter, action: actionList, forwardName: "角色搜索"},
	{Name: "bgm角色", Usage: "/bgm角色 <关键词|ID>", Noun: "角色", Kind: bangumi.KindCharacter, action: actionResolve},
	{Name: "bgm人物搜索", Usage: "/bgm人物搜索 <关键词>", Noun: "人物", Kind: bangumi.KindPerson, action: actionList, forwardName: "人物搜索"},
	{Name: "bgm人物", Usage: "/bgm人物 <关键词|ID>", Noun: "人物", Kind: bangumi.KindPerson, action: actionResolve},
	{Name: "bgm用户", Usage: "/bgm用户 <用户名>", Noun: "用户", Kind: bangumi.KindUser, action: actionResolve},
}

var commandIndex = func() map[string]*Command {
	idx := make(map[string]*Command)
	for i := range commands {
		c := &commands[i]
		idx[c.Name] = c
		for _, alias := range c.Aliases {
			idx[alias] = c
		}
	}
	return idx
}()

// Commands returns the supported commands in display order
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// parseMessage splits "/name rest of the text" into the command and its
// trimmed argument. The leading slash is optional.
func parseMessage(message string) (*Command, string, bool) {
	message = strings.TrimSpace(message)
	message = strings.TrimPrefix(message, "/")

	name, arg := message, ""
	if i := strings.IndexFunc(message, unicode.IsSpace); i >= 0 {
		name, arg = message[:i], strings.TrimSpace(message[i:])
	}

	cmd, ok := commandIndex[name]
	return cmd, arg, ok
}
