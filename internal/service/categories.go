package service

import (
	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/cache"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
)

var (
	defaultCategoryOrder     = Order{By: "name", Dir: "ASC"}
	defaultCategoryLinkOrder = Order{By: "created_at", Dir: "DESC"}
)

type CategoryInput struct {
	Name        string
	Description *string
	// DescriptionSet marks a submitted description. Update leaves the stored
	// one alone otherwise.
	DescriptionSet bool
	// ParentCategory of nil or 0 means top-level.
	ParentCategory *uint64
}

type Categories struct {
	db      *gorm.DB
	cache   *cache.Categories
	perPage uint64
	logger  *zap.SugaredLogger
}

func NewCategories(conn *gorm.DB, c *cache.Categories, cfg *config.Config, l *zap.SugaredLogger) *Categories {
	return &Categories{
		db:      conn,
		cache:   c,
		perPage: cfg.PaginationLimit,
		logger:  l,
	}
}

// List returns one page of the user's top-level categories.
func (s *Categories) List(userID uint64, order Order, page uint64) ([]db.Category, Pagination, error) {
	orderBy, err := order.clause(categoryOrderable, defaultCategoryOrder)
	if err != nil {
		return nil, Pagination{}, err
	}

	base := squirrel.Select().From("categories c").Where(squirrel.Eq{
		"c.user_id":         userID,
		"c.parent_category": nil,
	})

	categories := make([]db.Category, 0)
	p, err := fetchPage(s.db, base, categoryColumns, orderBy+", c.id ASC", page, s.perPage, &categories)
	if err != nil {
		return nil, Pagination{}, errors.Wrap(err, "list categories")
	}
	return categories, p, nil
}

// ParentOptions returns every top-level category of the user ordered by
// name, for the parent selector of the create and edit forms.
func (s *Categories) ParentOptions(userID uint64) ([]db.Category, error) {
	return s.cache.Remember(userID, func() ([]db.Category, error) {
		categories := make([]db.Category, 0)
		res := s.db.
			Where("user_id = ? AND parent_category IS NULL", userID).
			Order("name ASC").
			Find(&categories)
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "load parent options")
		}
		return categories, nil
	})
}

// Get loads a category and checks that userID owns it.
func (s *Categories) Get(userID, id uint64) (*db.Category, error) {
	category := db.Category{}
	res := s.db.First(&category, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "category %d", id)
		}
		return nil, errors.Wrap(res.Error, "get category")
	}
	if category.UserID != userID {
		return nil, errors.Wrapf(ErrForbidden, "category %d", id)
	}
	return &category, nil
}

// Links returns one page of the category's links that belong to userID.
func (s *Categories) Links(userID uint64, category *db.Category, order Order, page uint64) ([]db.Link, Pagination, error) {
	orderBy, err := order.clause(linkOrderable, defaultCategoryLinkOrder)
	if err != nil {
		return nil, Pagination{}, err
	}

	base := squirrel.Select().From("links l").Where(squirrel.Eq{
		"l.category_id": category.ID,
		"l.user_id":     userID,
	})

	links := make([]db.Link, 0)
	p, err := fetchPage(s.db, base, linkColumns, orderBy+", l.id DESC", page, s.perPage, &links)
	if err != nil {
		return nil, Pagination{}, errors.Wrap(err, "list category links")
	}
	return links, p, nil
}

func (s *Categories) Create(userID uint64, in CategoryInput) (*db.Category, error) {
	parent := normalizeParent(in.ParentCategory)
	if err := s.validateParent(userID, nil, parent); err != nil {
		return nil, err
	}

	model := db.Category{
		UserID:         userID,
		Name:           in.Name,
		Description:    in.Description,
		ParentCategory: parent,
	}
	if res := s.db.Create(&model); res.Error != nil {
		return nil, errors.Wrap(res.Error, "create category")
	}

	s.cache.Flush()
	s.logger.Infow("category created", "id", model.ID, "user_id", userID, "parent_category", parent)

	return &model, nil
}

func (s *Categories) Update(userID, id uint64, in CategoryInput) (*db.Category, error) {
	category, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	parent := normalizeParent(in.ParentCategory)
	if err := s.validateParent(userID, category, parent); err != nil {
		return nil, err
	}

	// a map so that a nil parent is written as NULL
	values := map[string]interface{}{
		"name":            in.Name,
		"parent_category": parent,
	}
	if in.DescriptionSet {
		values["description"] = in.Description
	}
	res := s.db.Model(category).Updates(values)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update category")
	}

	s.cache.Flush()
	s.logger.Infow("category updated", "id", id, "user_id", userID, "parent_category", parent)

	return s.Get(userID, id)
}

// Delete removes the category. Its direct children become top-level and its
// links lose their category; neither is deleted. It returns how many
// children were detached.
func (s *Categories) Delete(userID, id uint64) (int64, error) {
	category, err := s.Get(userID, id)
	if err != nil {
		return 0, err
	}

	var detached int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.Category{}).
			Where("parent_category = ?", category.ID).
			Update("parent_category", nil)
		if res.Error != nil {
			return errors.Wrap(res.Error, "detach child categories")
		}
		detached = res.RowsAffected

		res = tx.Model(&db.Link{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil)
		if res.Error != nil {
			return errors.Wrap(res.Error, "detach links")
		}

		if res := tx.Delete(category); res.Error != nil {
			return errors.Wrap(res.Error, "delete category")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.cache.Flush()
	s.logger.Infow("category deleted", "id", id, "user_id", userID, "detached_children", detached)

	return detached, nil
}

// validateParent enforces the one-level hierarchy: the parent must be
// another top-level category of the same user, and a category that already
// has children cannot become a child itself. self is nil on create.
func (s *Categories) validateParent(userID uint64, self *db.Category, parentID *uint64) error {
	if parentID == nil {
		return nil
	}
	if self != nil && self.ID == *parentID {
		return errors.Wrap(ErrValidation, "a category cannot be its own parent")
	}

	parent := db.Category{}
	res := s.db.First(&parent, *parentID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return errors.Wrapf(ErrValidation, "parent category %d does not exist", *parentID)
		}
		return errors.Wrap(res.Error, "get parent category")
	}
	if parent.UserID != userID {
		return errors.Wrapf(ErrValidation, "parent category %d does not exist", *parentID)
	}
	if !parent.IsTopLevel() {
		return errors.Wrapf(ErrValidation, "parent category %d is itself a child", *parentID)
	}

	if self != nil {
		var children int64
		res := s.db.Model(&db.Category{}).Where("parent_category = ?", self.ID).Count(&children)
		if res.Error != nil {
			return errors.Wrap(res.Error, "count child categories")
		}
		if children > 0 {
			return errors.Wrap(ErrValidation, "a category with children cannot be nested")
		}
	}
	return nil
}

func normalizeParent(parent *uint64) *uint64 {
	if parent == nil || *parent == 0 {
		return nil
	}
	p := *parent
	return &p
}
