package transport

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/models"
)

func (s *HTTPServer) APICategoryList(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	categories, p, err := s.categories.List(user.ID, queryOrder(c), queryPage(c))
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.PageResp{
		Data:       models.NewCategoryResps(categories),
		Pagination: p,
	})
}

func (s *HTTPServer) APICategoryCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.CategoryReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := s.categories.Create(user.ID, req.Input())
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.NewCategoryResp(category))
}

func (s *HTTPServer) APICategoryShow(c echo.Context) error {
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

	return c.JSON(http.StatusOK, models.NewCategoryResp(category))
}

func (s *HTTPServer) APICategoryLinks(c echo.Context) error {
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
	links, p, err := s.categories.Links(user.ID, category, queryOrder(c), queryPage(c))
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.PageResp{
		Data:       models.NewLinkResps(links),
		Pagination: p,
	})
}

func (s *HTTPServer) APICategoryUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if _, err := s.categories.Get(user.ID, id); err != nil {
		return mapError(err)
	}

	req := models.CategoryReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := s.categories.Update(user.ID, id, req.Input())
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.NewCategoryResp(category))
}

func (s *HTTPServer) APICategoryDelete(c echo.Context) error {
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
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) LinkGet(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	tags := make([]uint64, 0)
	for _, raw := range c.QueryParams()["tags"] {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid query param 'tags'")
		}
		tags = append(tags, id)
	}

	links, p, err := s.general.LinkList(user.ID, tags, queryOrder(c), queryPage(c))
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.PageResp{
		Data:       models.NewLinkResps(links),
		Pagination: p,
	})
}

func (s *HTTPServer) LinkCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.LinkReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	link, err := s.general.LinkCreate(user.ID, req.Input())
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.NewLinkResp(link))
}

func (s *HTTPServer) LinkShow(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	link, err := s.general.LinkGet(user.ID, id)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.NewLinkResp(link))
}

func (s *HTTPServer) LinkUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.LinkReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	link, err := s.general.LinkUpdate(user.ID, id, req.Input())
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.NewLinkResp(link))
}

func (s *HTTPServer) LinkDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.general.LinkDelete(user.ID, id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) TagGet(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	tags, err := s.general.TagGet(user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.NewTagResps(tags))
}

func (s *HTTPServer) TagCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.TagReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	model, err := s.general.TagCreate(user.ID, req.Name)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.TagResp{
		ID:   model.ID,
		Name: model.Name,
	})
}

func (s *HTTPServer) TagUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.TagReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	model, err := s.general.TagUpdate(id, user.ID, req.Name)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.TagResp{
		ID:   model.ID,
		Name: model.Name,
	})
}

func (s *HTTPServer) TagDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.general.TagDelete(id, user.ID); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) TagLinks(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	links, p, err := s.general.TagLinks(user.ID, id, queryOrder(c), queryPage(c))
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, models.PageResp{
		Data:       models.NewLinkResps(links),
		Pagination: p,
	})
}
