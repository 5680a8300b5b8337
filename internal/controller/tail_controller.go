package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"logtail-dashboard/internal/dto"
	"logtail-dashboard/internal/model"
	"logtail-dashboard/internal/render"
	"logtail-dashboard/internal/service"
	"logtail-dashboard/internal/util"
)

// TailController serves the latest rendered snapshot and the metric-name
// catalog over HTTP. It only ever reads whole snapshots; the poller owns
// all writes.
type TailController struct {
	snapshots *render.SnapshotStore
	catalog   service.MetricCatalog
}

func NewTailController(snapshots *render.SnapshotStore, catalog service.MetricCatalog) *TailController {
	return &TailController{
		snapshots: snapshots,
		catalog:   catalog,
	}
}

func RegisterTailRoutes(router *gin.Engine, controller *TailController) {
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, model.NewResponse("ok", nil))
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/logs", controller.GetLogs)
		v1.GET("/status", controller.GetStatus)
		v1.GET("/metrics/names", controller.GetMetricNames)
	}
}

// GetLogs returns the rows of the most recent poll tick, newest first.
func (c *TailController) GetLogs(ctx *gin.Context) {
	snap := c.snapshots.Latest()

	rows := make([]dto.LogRow, len(snap.Rows))
	for i, row := range snap.Rows {
		rows[i] = dto.LogRow{
			Time:   util.FormatMillis(row.Timestamp),
			Source: row.Labels.SourceName(),
			Labels: row.Labels,
			Record: row.Record,
		}
	}

	ctx.JSON(http.StatusOK, dto.TailResponse{
		Rows:        rows,
		Count:       len(rows),
		ActiveQuery: snap.ActiveQuery,
	})
}

// GetStatus reports the poller state, backend health and the last
// diagnostic line.
func (c *TailController) GetStatus(ctx *gin.Context) {
	snap := c.snapshots.Latest()

	ctx.JSON(http.StatusOK, dto.StatusResponse{
		State:        snap.State,
		ActiveQuery:  snap.ActiveQuery,
		Healthy:      snap.Healthy,
		HealthDetail: snap.HealthDetail,
		LastError:    snap.LastError,
		RenderedAt:   snap.RenderedAt,
	})
}

// GetMetricNames returns the cached metric-name catalog.
func (c *TailController) GetMetricNames(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.MetricNamesResponse{
		Names:       c.catalog.Names(),
		RefreshedAt: c.catalog.RefreshedAt(),
	})
}
