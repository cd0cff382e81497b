package templates

import (
	"net/url"
	"strconv"

	"github.com/jjenkins/visabulletin/internal/model"
)

// RegionOption is one entry of the region filter
type RegionOption struct {
	Code model.Region
	Name string
}

// Regions lists the chargeability areas in display order
var Regions = []RegionOption{
	{Code: model.RegionChina, Name: "中国大陆"},
	{Code: model.RegionRestOfWorld, Name: "全球/港澳台"},
}

// RegionName returns the display name for code, or code itself when unknown
func RegionName(code model.Region) string {
	for _, r := range Regions {
		if r.Code == code {
			return r.Name
		}
	}
	return string(code)
}

// HomeSummary holds the counts shown above the tables
type HomeSummary struct {
	Categories   int
	Advanced     int
	Retrogressed int
	Unchanged    int
}

// HomePage is everything the home view renders
type HomePage struct {
	Site       model.SiteConfiguration
	Region     model.Region
	Employment []model.DisplayRow
	Family     []model.DisplayRow
	Summary    HomeSummary
}

// CategoryOption is one entry of the category selector
type CategoryOption struct {
	Code string
	Name string
}

// TrendsPage is everything the trends view renders
type TrendsPage struct {
	Site       model.SiteConfiguration
	Query      model.TrendQuery
	Categories []CategoryOption
	Months     []int
	// Points is newest first
	Points []model.TrendPoint
}

// TrendURL links a home table row to its trend page
func TrendURL(category string, region model.Region) string {
	v := url.Values{}
	v.Set("category", category)
	v.Set("region", string(region))
	return "/trends?" + v.Encode()
}

// ChartURL is the chart image address for q
func ChartURL(q model.TrendQuery) string {
	v := url.Values{}
	v.Set("category", q.CategoryCode)
	v.Set("region", string(q.RegionCode))
	v.Set("table", string(q.TableType))
	v.Set("months", strconv.Itoa(q.Months))
	return "/trends/chart.svg?" + v.Encode()
}

func pageTitle(site model.SiteConfiguration, title string) string {
	if title == "" {
		return site.SEO.Title
	}
	return title + " - " + site.SEO.Title
}

func summaryText(s HomeSummary) string {
	return "共 " + strconv.Itoa(s.Categories) + " 个类别，前进 " +
		strconv.Itoa(s.Advanced) + "，后退 " +
		strconv.Itoa(s.Retrogressed) + "，无变化 " +
		strconv.Itoa(s.Unchanged)
}

func changeDays(n int) string {
	switch {
	case n > 0:
		return "+" + strconv.Itoa(n) + "天"
	case n < 0:
		return strconv.Itoa(n) + "天"
	default:
		return "-"
	}
}
