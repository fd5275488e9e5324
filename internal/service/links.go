package service

import (
	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
)

var defaultLinkOrder = Order{By: "created_at", Dir: "DESC"}

type LinkInput struct {
	URL         string
	Title       *string
	Description *string
	IsPrivate   bool
	// CategoryID of nil or 0 leaves the link uncategorized.
	CategoryID *uint64
	Tags       []uint64
}

// LinkList returns one page of the user's links. A non-empty tags filter
// keeps links carrying at least one of the tags.
func (s *General) LinkList(userID uint64, tags []uint64, order Order, page uint64) ([]db.Link, Pagination, error) {
	orderBy, err := order.clause(linkOrderable, defaultLinkOrder)
	if err != nil {
		return nil, Pagination{}, err
	}

	base := squirrel.Select().From("links l").Where(squirrel.Eq{"l.user_id": userID})
	if len(tags) != 0 {
		sub, args, err := squirrel.Select("lt.link_id").From("link_tags lt").
			Where(squirrel.Eq{"lt.tag_id": tags}).ToSql()
		if err != nil {
			return nil, Pagination{}, errors.Wrap(err, "build tag filter")
		}
		base = base.Where("l.id IN ("+sub+")", args...)
	}

	links := make([]db.Link, 0)
	p, err := fetchPage(s.db, base, linkColumns, orderBy+", l.id DESC", page, s.perPage, &links)
	if err != nil {
		return nil, Pagination{}, errors.Wrap(err, "list links")
	}
	if err := s.loadTags(links); err != nil {
		return nil, Pagination{}, err
	}
	return links, p, nil
}

func (s *General) LinkGet(userID, id uint64) (*db.Link, error) {
	link := db.Link{}
	res := s.db.Preload("Tags").First(&link, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "link %d", id)
		}
		return nil, errors.Wrap(res.Error, "get link")
	}
	if link.UserID != userID {
		return nil, errors.Wrapf(ErrForbidden, "link %d", id)
	}
	return &link, nil
}

func (s *General) LinkCreate(userID uint64, in LinkInput) (*db.Link, error) {
	categoryID, err := s.linkCategory(userID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	tags, err := s.ownedTags(userID, in.Tags)
	if err != nil {
		return nil, err
	}

	model := db.Link{
		UserID:      userID,
		CategoryID:  categoryID,
		URL:         in.URL,
		Title:       in.Title,
		Description: in.Description,
		IsPrivate:   in.IsPrivate,
		Tags:        tags,
	}
	if res := s.db.Create(&model); res.Error != nil {
		return nil, errors.Wrap(res.Error, "create link")
	}

	return &model, nil
}

func (s *General) LinkUpdate(userID, id uint64, in LinkInput) (*db.Link, error) {
	link, err := s.LinkGet(userID, id)
	if err != nil {
		return nil, err
	}
	categoryID, err := s.linkCategory(userID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	tags, err := s.ownedTags(userID, in.Tags)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(link).Updates(map[string]interface{}{
			"url":         in.URL,
			"title":       in.Title,
			"description": in.Description,
			"is_private":  in.IsPrivate,
			"category_id": categoryID,
		})
		if res.Error != nil {
			return errors.Wrap(res.Error, "update link")
		}
		association := tx.Model(link).Association("Tags")
		if len(tags) == 0 {
			if err := association.Clear(); err != nil {
				return errors.Wrap(err, "clear tags")
			}
			return nil
		}
		if err := association.Replace(tags); err != nil {
			return errors.Wrap(err, "replace tags")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.LinkGet(userID, id)
}

func (s *General) LinkDelete(userID, id uint64) error {
	link, err := s.LinkGet(userID, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(link).Association("Tags").Clear(); err != nil {
			return errors.Wrap(err, "clear tags")
		}
		if res := tx.Delete(link); res.Error != nil {
			return errors.Wrap(res.Error, "delete link")
		}
		return nil
	})
}

func (s *General) linkCategory(userID uint64, categoryID *uint64) (*uint64, error) {
	id := normalizeParent(categoryID)
	if id == nil {
		return nil, nil
	}
	if _, err := s.categories.Get(userID, *id); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return nil, errors.Wrapf(ErrValidation, "category %d does not exist", *id)
		}
		return nil, err
	}
	return id, nil
}

// ownedTags loads the given tag ids, failing if any of them is missing or
// belongs to someone else.
func (s *General) ownedTags(userID uint64, ids []uint64) ([]db.Tag, error) {
	tags := make([]db.Tag, 0)
	if len(ids) == 0 {
		return tags, nil
	}

	unique := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	res := s.db.Where("id IN ? AND user_id = ?", ids, userID).Find(&tags)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "load tags")
	}
	if len(tags) != len(unique) {
		return nil, errors.Wrap(ErrValidation, "unknown tag")
	}
	return tags, nil
}

type linkTagRow struct {
	LinkID uint64
	TagID  uint64
	Name   string
	UserID uint64
}

func (s *General) loadTags(links []db.Link) error {
	if len(links) == 0 {
		return nil
	}
	ids := make([]uint64, len(links))
	index := make(map[uint64]int, len(links))
	for i := range links {
		ids[i] = links[i].ID
		index[links[i].ID] = i
		links[i].Tags = make([]db.Tag, 0)
	}

	sql, args, err := squirrel.
		Select("lt.link_id", "t.id AS tag_id", "t.name", "t.user_id").
		From("tags t").
		Join("link_tags lt ON lt.tag_id = t.id").
		Where(squirrel.Eq{"lt.link_id": ids}).
		OrderBy("t.name").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build sql")
	}

	rows := make([]linkTagRow, 0)
	if res := s.db.Raw(sql, args...).Scan(&rows); res.Error != nil {
		return errors.Wrap(res.Error, "scan link tags")
	}
	for _, r := range rows {
		i := index[r.LinkID]
		links[i].Tags = append(links[i].Tags, db.Tag{
			GormForkedModel: db.GormForkedModel{ID: r.TagID},
			Name:            r.Name,
			UserID:          r.UserID,
		})
	}
	return nil
}
