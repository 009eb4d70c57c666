// Package features computes the fixed meta-feature vector a campaign
// is scored on. The vector layout is significant: the pre-fit scaler,
// model coefficients and cohort reference are all indexed by it.
package features

import (
	"strings"

	"kickadvisor-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Count is the length of the feature vector.
const Count = 20

type Features struct {
	AboutLinks          float64
	AboutImages         float64
	AboutVideos         float64
	AboutBold           float64
	AboutHeaders        float64
	AboutLists          float64
	AboutParagraphs     float64
	AboutWords          float64
	AboutSentences      float64
	AboutAvgSentenceLen float64
	AboutExclamations   float64
	AboutQuestions      float64
	AboutAllCaps        float64
	AboutNumerals       float64
	AboutMoneyMentions  float64
	RisksWords          float64
	RisksSentences      float64
	RisksAvgSentenceLen float64
	RisksExclamations   float64
	RisksQuestions      float64
}

var names = []string{
	"about_links",
	"about_images",
	"about_videos",
	"about_bold",
	"about_headers",
	"about_lists",
	"about_paragraphs",
	"about_words",
	"about_sentences",
	"about_avg_sentence_words",
	"about_exclamations",
	"about_questions",
	"about_allcaps_words",
	"about_numerals",
	"about_money_mentions",
	"risks_words",
	"risks_sentences",
	"risks_avg_sentence_words",
	"risks_exclamations",
	"risks_questions",
}

func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func (f Features) Vector() []float64 {
	return []float64{
		f.AboutLinks,
		f.AboutImages,
		f.AboutVideos,
		f.AboutBold,
		f.AboutHeaders,
		f.AboutLists,
		f.AboutParagraphs,
		f.AboutWords,
		f.AboutSentences,
		f.AboutAvgSentenceLen,
		f.AboutExclamations,
		f.AboutQuestions,
		f.AboutAllCaps,
		f.AboutNumerals,
		f.AboutMoneyMentions,
		f.RisksWords,
		f.RisksSentences,
		f.RisksAvgSentenceLen,
		f.RisksExclamations,
		f.RisksQuestions,
	}
}

func avgSentenceLen(words, sentences int) float64 {
	if sentences == 0 {
		return 0
	}
	return float64(words) / float64(sentences)
}

// Extract computes the feature vector from the two raw section fragments.
// A missing section (empty string or the extraction sentinel) contributes
// all-zero counts rather than an error.
func Extract(aboutHtml, risksHtml string) (Features, error) {
	var f Features

	if usable(aboutHtml) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(aboutHtml))
		if err != nil {
			return Features{}, err
		}

		f.AboutLinks = float64(doc.Find("a").Length())
		f.AboutImages = float64(doc.Find("img").Length())
		f.AboutVideos = float64(doc.Find("iframe, video").Length())
		f.AboutBold = float64(doc.Find("b, strong").Length())
		f.AboutHeaders = float64(doc.Find("h1, h2, h3, h4, h5, h6").Length())
		f.AboutLists = float64(doc.Find("ul, ol").Length())
		f.AboutParagraphs = float64(doc.Find("p").Length())

		text := textutil.CleanText(doc.Text())
		words := textutil.CountWords(text)
		sentences := textutil.CountSentences(text)
		f.AboutWords = float64(words)
		f.AboutSentences = float64(sentences)
		f.AboutAvgSentenceLen = avgSentenceLen(words, sentences)
		f.AboutExclamations = float64(textutil.CountRune(text, '!'))
		f.AboutQuestions = float64(textutil.CountRune(text, '?'))
		f.AboutAllCaps = float64(textutil.CountAllCapsWords(text))
		f.AboutNumerals = float64(textutil.CountNumerals(text))
		f.AboutMoneyMentions = float64(textutil.CountMoneyMentions(text))
	}

	if usable(risksHtml) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(risksHtml))
		if err != nil {
			return Features{}, err
		}

		text := textutil.CleanText(doc.Text())
		words := textutil.CountWords(text)
		sentences := textutil.CountSentences(text)
		f.RisksWords = float64(words)
		f.RisksSentences = float64(sentences)
		f.RisksAvgSentenceLen = avgSentenceLen(words, sentences)
		f.RisksExclamations = float64(textutil.CountRune(text, '!'))
		f.RisksQuestions = float64(textutil.CountRune(text, '?'))
	}

	return f, nil
}

const notFoundSentinel = "section_not_found"

func usable(html string) bool {
	return html != "" && html != notFoundSentinel
}
