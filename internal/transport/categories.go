package transport

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/models"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/service"
)

func (s *HTTPServer) CategoryIndex(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	order := queryOrder(c)
	categories, p, err := s.categories.List(user.ID, order, queryPage(c))
	if err != nil {
		return mapError(err)
	}

	return c.Render(http.StatusOK, viewCategoryIndex, categoryIndexView{
		Flash:      pullFlash(c),
		Categories: categories,
		Pagination: p,
		Route:      c.Request().URL.Path,
		OrderBy:    order.By,
		OrderDir:   order.Dir,
	})
}

func (s *HTTPServer) CategoryCreateForm(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	parents, err := s.categories.ParentOptions(user.ID)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, viewCategoryCreate, categoryFormView{
		Flash:      pullFlash(c),
		Categories: parents,
	})
}

func (s *HTTPServer) CategoryStore(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.CategoryReq{}
	if err := bindCategoryForm(c, &req); err != nil {
		return s.formError(c, err, "/categories/create")
	}

	category, err := s.categories.Create(user.ID, req.Input())
	if err != nil {
		return s.formError(c, err, "/categories/create")
	}

	alert(c, "Category added successfully.", levelSuccess)

	if truthy(c.FormValue("reload_view")) {
		flashReloadView(c)
		return c.Redirect(http.StatusSeeOther, "/categories/create")
	}

	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/categories/%d", category.ID))
}

func (s *HTTPServer) CategoryShow(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	category, err := s.categories.Get(user.ID, id)
	if err != nil {
		return mapError(err)
	}

	order := queryOrder(c)
	links, p, err := s.categories.Links(user.ID, category, order, queryPage(c))
	if err != nil {
		return mapError(err)
	}

	return c.Render(http.StatusOK, viewCategoryShow, categoryShowView{
		Flash:         pullFlash(c),
		Category:      category,
		CategoryLinks: links,
		Pagination:    p,
		Route:         c.Request().URL.Path,
		OrderBy:       order.By,
		OrderDir:      order.Dir,
	})
}

func (s *HTTPServer) CategoryEditForm(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	category, err := s.categories.Get(user.ID, id)
	if err != nil {
		return mapError(err)
	}
	parents, err := s.categories.ParentOptions(user.ID)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, viewCategoryEdit, categoryFormView{
		Flash:      pullFlash(c),
		Categories: parents,
		Category:   category,
	})
}

func (s *HTTPServer) CategoryUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	// ownership is checked before the body is looked at
	if _, err := s.categories.Get(user.ID, id); err != nil {
		return mapError(err)
	}

	editURL := fmt.Sprintf("/categories/%d/edit", id)
	req := models.CategoryReq{}
	if err := bindCategoryForm(c, &req); err != nil {
		return s.formError(c, err, editURL)
	}

	category, err := s.categories.Update(user.ID, id, req.Input())
	if err != nil {
		return s.formError(c, err, editURL)
	}

	alert(c, "Category updated successfully.", levelSuccess)

	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/categories/%d", category.ID))
}

func (s *HTTPServer) CategoryDestroy(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if _, err := s.categories.Delete(user.ID, id); err != nil {
		return mapError(err)
	}

	alert(c, "Category deleted successfully.", levelWarning)

	return c.Redirect(http.StatusSeeOther, "/categories")
}

// formError sends validation failures back to the form with the message
// flashed. Other errors go through mapError.
func (s *HTTPServer) formError(c echo.Context, err error, formURL string) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusBadRequest {
		alert(c, fmt.Sprint(httpErr.Message), levelDanger)
		return c.Redirect(http.StatusSeeOther, formURL)
	}
	if errors.Is(err, service.ErrValidation) {
		alert(c, err.Error(), levelDanger)
		return c.Redirect(http.StatusSeeOther, formURL)
	}
	return mapError(err)
}

// bindCategoryForm binds a category form. A description field that is present
// but empty clears the stored description, an absent one keeps it.
func bindCategoryForm(c echo.Context, req *models.CategoryReq) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if form, err := c.FormParams(); err == nil {
		if values, ok := form["description"]; ok && len(values) > 0 {
			d := values[0]
			req.Description = &d
		}
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func truthy(v string) bool {
	switch v {
	case "", "0", "false", "off":
		return false
	}
	return true
}
