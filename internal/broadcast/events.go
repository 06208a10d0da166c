package broadcast

import (
	"fmt"
	"time"
)

type monthDay struct {
	month time.Month
	day   int
}

var historicalEvents = map[monthDay][]string{
	{time.January, 1}: {
		"1970年 - Unix纪元时间从这一天开始计时",
		"1999年 - 欧元作为记账货币正式启用",
	},
	{time.February, 14}: {
		"公元496年 - 圣瓦伦丁节被定为纪念日",
		"1876年 - 贝尔为电话申请了专利",
	},
	{time.June, 1}: {
		"1950年 - 国际儿童节正式设立",
		"1980年 - 全球第一个24小时新闻频道CNN开播",
	},
}

// HistoricalEvent returns a curated fact for month/day, or one of three
// generic fillers when the table has nothing for that day.
func HistoricalEvent(month time.Month, day int, rng RandomSource) string {
	events, ok := historicalEvents[monthDay{month, day}]
	if !ok {
		m := int(month)
		events = []string{
			fmt.Sprintf("在%d月%d日，历史上曾发生过许多重要的事件", m, day),
			fmt.Sprintf("%d月%d日是特别的一天，见证过许多历史时刻", m, day),
			fmt.Sprintf("你知道吗？%d月%d日这一天，历史上发生过不少有趣的事情", m, day),
		}
	}
	return events[rng.Intn(len(events))]
}
