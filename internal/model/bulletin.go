package model

// CategoryType groups visa categories into employment and family based tables
type CategoryType string

const (
	CategoryEmployment CategoryType = "employment"
	CategoryFamily     CategoryType = "family"
)

// Region is the chargeability area a row applies to
type Region string

const (
	RegionChina       Region = "cn"
	RegionRestOfWorld Region = "rw"
)

// TableType selects the bulletin chart: A is final action, B is dates for filing
type TableType string

const (
	TableA TableType = "A"
	TableB TableType = "B"
)

// ChangeStatus is the month over month classification attached to a row
type ChangeStatus string

const (
	StatusAdvanced     ChangeStatus = "advanced"
	StatusRetrogressed ChangeStatus = "retrogressed"
	StatusUnchanged    ChangeStatus = "unchanged"
	StatusCurrent      ChangeStatus = "current"
	StatusUnavailable  ChangeStatus = "unavailable"
)

// ChangeClass is the style token used to color a change annotation.
// The zero value marks a cell that was never filled.
type ChangeClass string

const (
	ClassAdvance    ChangeClass = "advance"
	ClassRetrogress ChangeClass = "retrogress"
	ClassNeutral    ChangeClass = "neutral"
)

// RawBulletinRow is one observation as returned by the latest and trend queries
type RawBulletinRow struct {
	BulletinMonth string       `json:"bulletin_month"`
	CategoryCode  string       `json:"category_code"`
	CategoryName  string       `json:"category_name"`
	CategoryType  CategoryType `json:"category_type"`
	RegionCode    Region       `json:"region_code"`
	RegionName    string       `json:"region_name"`
	TableType     TableType    `json:"table_type"`
	PriorityDate  *string      `json:"priority_date,omitempty"`
	ChangeDays    *int         `json:"change_days,omitempty"`
	ChangeStatus  ChangeStatus `json:"change_status"`
	Notes         string       `json:"notes,omitempty"`
}

// TableCell is the rendered state of one table (A or B) for a category and region
type TableCell struct {
	PriorityDate *string     `json:"priorityDate"`
	DisplayText  string      `json:"displayText"`
	ChangeText   string      `json:"changeText"`
	ChangeClass  ChangeClass `json:"changeClass"`
}

// DisplayRow holds both tables for a single (category, region) pair
type DisplayRow struct {
	CategoryName string       `json:"categoryName"`
	CategoryCode string       `json:"categoryCode"`
	CategoryType CategoryType `json:"categoryType"`
	RegionCode   Region       `json:"regionCode"`
	RegionName   string       `json:"regionName"`
	TableA       TableCell    `json:"tableA"`
	TableB       TableCell    `json:"tableB"`
}

// Marker values describe what a TrendPoint's TimeValue encodes
const (
	MarkerDate        = "date"
	MarkerCurrent     = "current"
	MarkerUnavailable = "unavailable"
)

// TrendPoint is one month of a trend series
type TrendPoint struct {
	BulletinMonth string       `json:"bulletinMonth"`
	MonthLabel    string       `json:"monthLabel"`
	TimeValue     *int64       `json:"timeValue"` // epoch millis, nil is a gap
	Marker        string       `json:"marker"`
	DisplayText   string       `json:"displayText"`
	ChangeDays    int          `json:"changeDays"`
	Status        ChangeStatus `json:"status"`
}

// TrendQuery selects one (category, region, table) series
type TrendQuery struct {
	CategoryCode string    `json:"category"`
	RegionCode   Region    `json:"region"`
	TableType    TableType `json:"table"`
	Months       int       `json:"months"`
}
