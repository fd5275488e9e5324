package models

import (
	"time"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/service"
)

type UserReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type TokenResp struct {
	Token string `json:"token"`
}

// CategoryReq is bound from JSON bodies and HTML forms alike. Fields not
// listed here, such as tags, are ignored. Description stays nil when it was
// not submitted; HTML handlers fill it from the form themselves.
type CategoryReq struct {
	Name        string  `json:"name" form:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	// 0 means no parent
	ParentCategory uint64 `json:"parent_category" form:"parent_category"`
}

func (r *CategoryReq) Input() service.CategoryInput {
	in := service.CategoryInput{Name: r.Name}
	if r.Description != nil {
		in.DescriptionSet = true
		if *r.Description != "" {
			d := *r.Description
			in.Description = &d
		}
	}
	if r.ParentCategory != 0 {
		p := r.ParentCategory
		in.ParentCategory = &p
	}
	return in
}

type CategoryResp struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	ParentCategory *uint64   `json:"parent_category"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewCategoryResp(c *db.Category) CategoryResp {
	return CategoryResp{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		ParentCategory: c.ParentCategory,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func NewCategoryResps(categories []db.Category) []CategoryResp {
	resp := make([]CategoryResp, len(categories))
	for i := range categories {
		resp[i] = NewCategoryResp(&categories[i])
	}
	return resp
}

type LinkReq struct {
	URL         string   `json:"url" validate:"required,url"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	IsPrivate   bool     `json:"is_private"`
	CategoryID  uint64   `json:"category_id"`
	Tags        []uint64 `json:"tags"`
}

func (r *LinkReq) Input() service.LinkInput {
	in := service.LinkInput{
		URL:         r.URL,
		Title:       r.Title,
		Description: r.Description,
		IsPrivate:   r.IsPrivate,
		Tags:        r.Tags,
	}
	if r.CategoryID != 0 {
		c := r.CategoryID
		in.CategoryID = &c
	}
	return in
}

type LinkResp struct {
	ID          uint64    `json:"id"`
	URL         string    `json:"url"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	IsPrivate   bool      `json:"is_private"`
	CategoryID  *uint64   `json:"category_id"`
	Tags        []TagResp `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewLinkResp(l *db.Link) LinkResp {
	return LinkResp{
		ID:          l.ID,
		URL:         l.URL,
		Title:       l.Title,
		Description: l.Description,
		IsPrivate:   l.IsPrivate,
		CategoryID:  l.CategoryID,
		Tags:        NewTagResps(l.Tags),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func NewLinkResps(links []db.Link) []LinkResp {
	resp := make([]LinkResp, len(links))
	for i := range links {
		resp[i] = NewLinkResp(&links[i])
	}
	return resp
}

type TagReq struct {
	Name string `json:"name" validate:"required,max=255"`
}

type TagResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func NewTagResps(tags []db.Tag) []TagResp {
	resp := make([]TagResp, len(tags))
	for i := range tags {
		resp[i] = TagResp{
			ID:   tags[i].ID,
			Name: tags[i].Name,
		}
	}
	return resp
}

// PageResp is the envelope of every paginated listing.
type PageResp struct {
	Data interface{} `json:"data"`
	service.Pagination
}
