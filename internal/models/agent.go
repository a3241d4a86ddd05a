package models

import (
	"time"

	"github.com/lib/pq"
)

// Categories an agent can be published under. "All" is a list filter only.
var Categories = []string{
	"Marketing",
	"Sales",
	"Support",
	"Inventory",
	"Analytics",
	"Product",
	"Fulfillment",
	"Pricing",
	"Social Media",
}

const (
	SortTrending = "trending"
	SortNewest   = "newest"
	SortTopRated = "top-rated"
)

type Agent struct {
	ID               string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name             string `gorm:"column:name;type:text;not null;uniqueIndex" json:"name"`
	Slug             string `gorm:"column:slug;type:text;not null;uniqueIndex" json:"slug"`
	ShortDescription string `gorm:"column:short_description;type:text;not null" json:"shortDescription"`
	FullDescription  string `gorm:"column:full_description;type:text;not null" json:"fullDescription"`
	Category         string `gorm:"column:category;type:text;not null;index" json:"category"`

	Price      float64 `gorm:"column:price;type:numeric(10,2);not null;default:0" json:"price"`
	PriceLabel string  `gorm:"column:price_label;type:text;not null;default:'Free'" json:"priceLabel"`
	ImageURL   string  `gorm:"column:image_url;type:text;not null" json:"imageUrl"`

	Capabilities pq.StringArray `gorm:"column:capabilities;type:text[];not null;default:'{}'" json:"capabilities"`
	Tags         pq.StringArray `gorm:"column:tags;type:text[];not null;default:'{}'" json:"tags"`
	Platforms    pq.StringArray `gorm:"column:platforms;type:text[];not null;default:'{}'" json:"platforms"`

	PublisherName   string  `gorm:"column:publisher_name;type:text;not null" json:"publisherName"`
	PublisherAvatar *string `gorm:"column:publisher_avatar;type:text" json:"publisherAvatar"`
	Version         string  `gorm:"column:version;type:text;not null;default:'1.0.0'" json:"version"`

	// aggregates; rating is the mean of review ratings, two decimals
	Rating      float64 `gorm:"column:rating;type:numeric(3,2);not null;default:0" json:"rating"`
	ReviewCount int     `gorm:"column:review_count;not null;default:0" json:"reviewCount"`
	Purchases   int     `gorm:"column:purchases;not null;default:0" json:"purchases"`
	Views       int     `gorm:"column:views;not null;default:0" json:"views"`
	Featured    bool    `gorm:"column:featured;not null;default:false" json:"featured"`

	SystemPrompt *string `gorm:"column:system_prompt;type:text" json:"systemPrompt"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null" json:"createdAt"`
}

func (Agent) TableName() string { return "agents" }

// AgentFilter narrows an agent listing. Zero value lists everything by trending.
type AgentFilter struct {
	Category string
	Search   string
	Sort     string
}

func (f AgentFilter) IsDefault() bool {
	return (f.Category == "" || f.Category == "All") && f.Search == "" && (f.Sort == "" || f.Sort == SortTrending)
}
