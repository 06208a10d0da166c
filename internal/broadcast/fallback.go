package broadcast

import "fmt"

// Compose returns the canned broadcast for mode. It never fails and does no I/O.
func Compose(mode Mode, data *AggregatedData, rng RandomSource) string {
	date := FormatDate(data.ReferenceDate)

	switch mode {
	case ModeAnniversary:
		return fmt.Sprintf("💕 亲爱的，今天是特别的日子！%s，也是%s！\n\n"+
			"🎉 愿你们的爱情一如初见般甜蜜，每一天都有惊喜和感动。记得给彼此一个温暖的拥抱，说一声「我爱你」。"+
			"可以一起准备一顿浪漫的晚餐，或者翻翻从前的照片，重温那些闪闪发光的回忆。\n\n"+
			"💖 祝你们携手走过每一个春夏秋冬，让平凡的日子因为彼此而变得温暖明亮。",
			date, anniversaryTitles(data.TodaysAnniversaries))

	case ModeHistoricalMoments:
		return fmt.Sprintf("✨ 亲爱的，今天是%s。\n\n"+
			"📸 回望往年的今天，你们留下了许多值得珍藏的瞬间。那些欢声笑语和温馨片段，都是爱情长河里最亮的星。"+
			"翻看旧日的记录，仿佛一切都发生在昨天。\n\n"+
			"💝 愿你们继续携手前行，创造更多难忘的时刻。每一个今天，都会成为明天最美好的回忆。",
			date)

	default:
		event := HistoricalEvent(data.ReferenceDate.Month(), data.ReferenceDate.Day(), rng)
		return fmt.Sprintf("🗓️ 今天是%s。\n\n"+
			"🔍 历史上的今天：%s\n\n"+
			"🌟 不妨和另一半一起聊聊这个小知识，想象一下如果你们生活在那个年代，会发生怎样的故事。"+
			"也可以一起查查相关的资料，给平凡的日子添一点新鲜感。\n\n"+
			"愿你们每天都有新的发现，一起创造属于你们的独特回忆！",
			date, event)
	}
}
