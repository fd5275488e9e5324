package service

import (
	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
)

func (s *General) TagGet(userID uint64) ([]db.Tag, error) {
	tags := make([]db.Tag, 0)

	res := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&tags)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "list tags")
	}

	return tags, nil
}

// TagByID loads a tag and checks that userID owns it.
func (s *General) TagByID(userID, id uint64) (*db.Tag, error) {
	tag := db.Tag{}
	res := s.db.First(&tag, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "tag %d", id)
		}
		return nil, errors.Wrap(res.Error, "get tag")
	}
	if tag.UserID != userID {
		return nil, errors.Wrapf(ErrForbidden, "tag %d", id)
	}
	return &tag, nil
}

func (s *General) TagCreate(userID uint64, name string) (*db.Tag, error) {
	if err := s.tagNameFree(userID, name, 0); err != nil {
		return nil, err
	}

	model := db.Tag{
		Name:   name,
		UserID: userID,
	}

	res := s.db.Create(&model)
	if res.Error != nil {
		return nil, tagWriteError(res.Error, name, "create tag")
	}

	return &model, nil
}

func (s *General) TagUpdate(tagID uint64, userID uint64, name string) (*db.Tag, error) {
	model, err := s.TagByID(userID, tagID)
	if err != nil {
		return nil, err
	}

	if err := s.tagNameFree(userID, name, model.ID); err != nil {
		return nil, err
	}

	res := s.db.Model(model).Update("name", name)
	if res.Error != nil {
		return nil, tagWriteError(res.Error, name, "update tag")
	}

	return model, nil
}

func (s *General) TagDelete(id, userID uint64) error {
	tag, err := s.TagByID(userID, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(tag).Association("Links").Clear(); err != nil {
			return errors.Wrap(err, "clear links")
		}
		if res := tx.Delete(tag); res.Error != nil {
			return errors.Wrap(res.Error, "delete tag")
		}
		return nil
	})
}

// TagLinks returns one page of the user's links carrying the tag.
func (s *General) TagLinks(userID, tagID uint64, order Order, page uint64) ([]db.Link, Pagination, error) {
	if _, err := s.TagByID(userID, tagID); err != nil {
		return nil, Pagination{}, err
	}
	orderBy, err := order.clause(linkOrderable, defaultLinkOrder)
	if err != nil {
		return nil, Pagination{}, err
	}

	base := squirrel.Select().From("links l").
		Join("link_tags lt ON lt.link_id = l.id").
		Where(squirrel.Eq{
			"lt.tag_id": tagID,
			"l.user_id": userID,
		})

	links := make([]db.Link, 0)
	p, err := fetchPage(s.db, base, linkColumns, orderBy+", l.id DESC", page, s.perPage, &links)
	if err != nil {
		return nil, Pagination{}, errors.Wrap(err, "list tag links")
	}
	if err := s.loadTags(links); err != nil {
		return nil, Pagination{}, err
	}
	return links, p, nil
}

// tagNameFree fails with ErrValidation when another tag of the user already
// has the name. exceptID is the tag being renamed, 0 on create.
func (s *General) tagNameFree(userID uint64, name string, exceptID uint64) error {
	var n int64
	res := s.db.Model(&db.Tag{}).
		Where("user_id = ? AND name = ? AND id <> ?", userID, name, exceptID).
		Count(&n)
	if res.Error != nil {
		return errors.Wrap(res.Error, "count tags")
	}
	if n > 0 {
		return errors.Wrapf(ErrValidation, "tag %q already exists", name)
	}
	return nil
}

// tagWriteError maps a lost race on uidx_name_user_id to ErrValidation.
func tagWriteError(err error, name, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(ErrValidation, "tag %q already exists", name)
	}
	return errors.Wrap(err, msg)
}
