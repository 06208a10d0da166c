package broadcast

import (
	"fmt"
	"strings"

	"github.com/chanxe/love-plain/internal/model"
)

const (
	promptMoments      = 5
	promptMomentRunes  = 100
	lengthRequirement  = "【重要要求】播报内容必须控制在200-300字之间，内容完整、逻辑清晰、表达流畅，不要因为字数限制截断句子。"
	systemLengthSuffix = "所有回复必须严格控制在200-300字之间。"
)

type Prompt struct {
	User   string
	System string
}

// BuildPrompt renders the user and system prompt for mode.
func BuildPrompt(mode Mode, data *AggregatedData, rng RandomSource) Prompt {
	date := FormatDate(data.ReferenceDate)

	switch mode {
	case ModeAnniversary:
		return Prompt{
			User: fmt.Sprintf(`请以甜蜜、浪漫的语气，为情侣写一份纪念日专属播报。

今天是%s，也是%s！

播报内容包括：
1. 温馨的节日祝贺
2. 对这段感情的美好祝愿
3. 几个庆祝这个特别日子的小建议
4. 深深的爱意与关怀

可以适当加入emoji。

%s`, date, anniversaryTitles(data.TodaysAnniversaries), lengthRequirement),
			System: "你是一个浪漫甜蜜的助手，专门为情侣生成纪念日播报。语气温柔甜蜜，多用emoji，让情侣感受到浓浓的爱意。" + systemLengthSuffix,
		}

	case ModeHistoricalMoments:
		return Prompt{
			User: fmt.Sprintf(`请以温馨怀旧的语气，为情侣写一份回顾往年今日的播报。

今天是%s。

往年的今天，你们留下了这些瞬间：
%s

播报内容包括：
1. 对过往时光的怀念
2. 对现在生活的感恩
3. 对未来的憧憬
4. 对彼此的爱意

可以适当加入emoji。

%s`, date, momentLines(data.HistoricalMoments), lengthRequirement),
			System: "你是一个温暖怀旧的助手，专门陪情侣回顾往昔的美好时光。语气温馨感人，多用emoji。" + systemLengthSuffix,
		}

	default:
		event := HistoricalEvent(data.ReferenceDate.Month(), data.ReferenceDate.Day(), rng)
		return Prompt{
			User: fmt.Sprintf(`请以轻松有趣、活泼可爱的语气，为情侣写一份历史上的今天播报。

今天是%s。

历史上的今天：
%s

播报内容包括：
1. 用幽默的方式介绍这件事
2. 结合它给情侣一个有趣的互动建议
3. 鼓励两人享受今天
4. 一点相关的小知识

多用emoji。

%s`, date, event, lengthRequirement),
			System: "你是一个有趣活泼的助手，专门为情侣带来轻松的历史小知识。语气活泼，大量使用emoji。" + systemLengthSuffix,
		}
	}
}

func anniversaryTitles(anniversaries []model.Anniversary) string {
	titles := make([]string, len(anniversaries))
	for i, a := range anniversaries {
		titles[i] = a.Title
	}
	return strings.Join(titles, "和")
}

// momentLines keeps the prompt short; the full list still decided the mode.
func momentLines(moments []model.Moment) string {
	if len(moments) > promptMoments {
		moments = moments[:promptMoments]
	}
	lines := make([]string, len(moments))
	for i, m := range moments {
		lines[i] = fmt.Sprintf("%s曾说过：%s", m.Author, truncateRunes(m.Content, promptMomentRunes))
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
