package subcategory

import "strings"

// englishStopWords 是向量化时剔除的常见英文停用词。
// 覆盖商品名/描述里最常见的功能词即可，不追求语言学完备。
var englishStopWords = buildStopWords(`
a about above after again against all am an and any are as at be because been
before being below between both but by can did do does doing down during each
few for from further had has have having he her here hers herself him himself
his how i if in into is it its itself just me more most my myself no nor not
now of off on once only or other our ours ourselves out over own same she
should so some such than that the their theirs them themselves then there
these they this those through to too under until up very was we were what when
where which while who whom why will with you your yours yourself yourselves
`)

func buildStopWords(raw string) map[string]struct{} {
	words := strings.Fields(raw)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
