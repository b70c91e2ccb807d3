package echoapi

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escolaware/secretaria/core/collection"
)

type collectionApi struct {
	svc *collection.Service
}

// registerCollectionAPI mounts the uniform CRUD surface for one resource:
//
//	GET    /<resource>                     list all
//	POST   /<resource>                     create
//	GET    /<resource>/id/:id              point lookup
//	PUT    /<resource>/id/:id              full replace
//	DELETE /<resource>/id/:id              remove
//	GET    /<resource>/<lookup>/:value     secondary lookup (per definition)
//
// Every success, deletes and updates included, responds 200.
func registerCollectionAPI(g *echo.Group, svc *collection.Service) {
	api := collectionApi{svc: svc}
	def := svc.Definition()

	cg := g.Group("/" + def.Name)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/id/:id", api.retrieve)
	cg.PUT("/id/:id", api.update)
	cg.DELETE("/id/:id", api.destroy)
	for _, field := range def.Lookups {
		cg.GET("/"+field+"/:value", api.lookup(field))
	}
}

// Handlers

func (api *collectionApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.QueryAll())
}

func (api *collectionApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *collectionApi) lookup(field string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		// the router matches on the escaped path; lookup values may carry
		// spaces or slashes (names, dates)
		value, err := url.PathUnescape(ctx.Param("value"))
		if err != nil {
			value = ctx.Param("value")
		}
		return ctx.JSON(http.StatusOK, api.svc.FindByField(field, value))
	}
}

func (api *collectionApi) create(ctx echo.Context) error {
	// echo's binder also writes path params into the map, so it must not be nil
	data := collection.Record{}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding payload")
	}

	rec, err := api.svc.Create(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *collectionApi) update(ctx echo.Context) error {
	data := collection.Record{}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding payload")
	}

	rec, err := api.svc.Replace(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *collectionApi) destroy(ctx echo.Context) error {
	rec, err := api.svc.Remove(ctx.Param("id"))
	if err != nil {
		return err
	}
	// the removed record is returned as a single-element list
	return ctx.JSON(http.StatusOK, []collection.Record{rec})
}
