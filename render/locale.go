package render

import "golang.org/x/text/language"

// Labels holds the fixed wording of a message for one locale
type Labels struct {
	CurrentHeader  string
	NoGamesHeader  string
	UpcomingHeader string
	Price          string
	Window         string
	Description    string
	FreeWindow     string
	Updated        string
	Link           string
	StoreURL       string
	InvalidInput   string
}

// The first tag is the fallback for unmatched locales
var supported = []language.Tag{
	language.SimplifiedChinese,
	language.AmericanEnglish,
}

var labels = []Labels{
	{
		CurrentHeader:  "Epic Games 本周免费游戏",
		NoGamesHeader:  "Epic Games 本周暂无免费游戏",
		UpcomingHeader: "即将免费",
		Price:          "原价",
		Window:         "限时",
		Description:    "简介",
		FreeWindow:     "免费时间",
		Updated:        "更新时间",
		Link:           "链接",
		StoreURL:       "https://store.epicgames.com/zh-CN/free-games",
		InvalidInput:   "⚠️ 无法解析免费游戏数据",
	},
	{
		CurrentHeader:  "Epic Games free games this week",
		NoGamesHeader:  "No free Epic Games this week",
		UpcomingHeader: "Coming soon",
		Price:          "Original price",
		Window:         "Limited time",
		Description:    "About",
		FreeWindow:     "Free window",
		Updated:        "Updated",
		Link:           "Link",
		StoreURL:       "https://store.epicgames.com/en-US/free-games",
		InvalidInput:   "⚠️ Could not read free games data",
	},
}

var matcher = language.NewMatcher(supported)

// LabelsFor picks the closest supported wording for locale, e.g. "zh-CN" or "en"
func LabelsFor(locale string) Labels {
	tag, err := language.Parse(locale)
	if err != nil {
		return labels[0]
	}
	_, idx, confidence := matcher.Match(tag)
	if confidence == language.No {
		return labels[0]
	}
	return labels[idx]
}
