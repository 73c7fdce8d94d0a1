package format

// TypeMap maps the small integer codes used by the API to display labels
type TypeMap struct {
	Labels   map[int64]string
	Fallback string
}

// Label returns the label for code, or the map's fallback for unknown codes
func (m TypeMap) Label(code int64) string {
	if label, ok := m.Labels[code]; ok {
		return label
	}
	return m.Fallback
}

// SubjectTypes labels subject.type; unknown codes render as anime
var SubjectTypes = TypeMap{
	Labels: map[int64]string{
		1: "📚 书籍",
		2: "🎬 动画",
		3: "🎵 音乐",
		4: "🎮 游戏",
		6: "🌐 三次元",
	},
	Fallback: "🎬 动画",
}

// CharacterTypes labels character.type
var CharacterTypes = TypeMap{
	Labels: map[int64]string{
		1: "👤 角色",
		2: "🤖 机体",
		3: "🚢 舰船",
		4: "🏢 组织",
	},
	Fallback: "👤 角色",
}

// PersonTypes labels person.type
var PersonTypes = TypeMap{
	Labels: map[int64]string{
		1: "👤 个人",
		2: "🏢 公司",
		3: "👥 组合",
	},
	Fallback: "👤 个人",
}

// UserGroups labels user.user_group
var UserGroups = TypeMap{
	Labels: map[int64]string{
		1:  "管理员",
		2:  "Bangumi 管理猿",
		3:  "天窗管理猿",
		4:  "禁言用户",
		5:  "禁止访问用户",
		8:  "人物管理猿",
		9:  "维基条目管理猿",
		10: "用户",
		11: "维基人",
	},
	Fallback: "用户",
}
