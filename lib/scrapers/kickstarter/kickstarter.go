package kickstarter

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"kickadvisor-backend/lib/htmlutil"
	"kickadvisor-backend/lib/telemetry"
	"kickadvisor-backend/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Client struct {
	Http *resty.Client
}

func NewClient() (Client, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return Client{}, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "scrapers/kickstarter/http")

	return Client{Http: client}, nil
}

type Project struct {
	Url      string
	Title    string
	Sections Sections
	// outbound links inside the about section
	Anchors []htmlutil.Anchor
	// funding amounts when the page exposes them, 0 otherwise
	Goal    float64
	Pledged float64
}

func (c Client) FetchProject(ctx context.Context, link string) (Project, error) {
	ctx, span := tracer.Start(ctx, "FetchProject")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch project page")
		return Project{}, err
	}
	if res.StatusCode() >= 400 {
		err := fmt.Errorf("project page returned status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad response status")
		return Project{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse project page html")
		return Project{}, err
	}

	sections := ExtractSections(ctx, doc)

	var anchors []htmlutil.Anchor
	if sections.About.Found() {
		fragment, err := goquery.NewDocumentFromReader(strings.NewReader(sections.About.Html))
		if err == nil {
			anchors = htmlutil.GetAnchors(ctx, fragment.Find("a"))
		}
	}

	return Project{
		Url:      link,
		Title:    extractTitle(doc),
		Sections: sections,
		Anchors:  anchors,
		Goal:     extractAmount(doc, "data-goal"),
		Pledged:  extractAmount(doc, "data-pledged"),
	}, nil
}

func extractTitle(doc *goquery.Document) string {
	title := doc.Find(`meta[property="og:title"]`).AttrOr("content", "")
	if title == "" {
		title = doc.Find("h1").First().Text()
	}
	return textutil.CleanText(title)
}

func extractAmount(doc *goquery.Document, attr string) float64 {
	raw := doc.Find("[" + attr + "]").AttrOr(attr, "")
	if raw == "" {
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
