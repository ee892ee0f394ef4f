package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"camphub/internal/config"
	"camphub/internal/interfaces"
	"camphub/internal/managers"
	"camphub/internal/query"
	"camphub/internal/schemas"
	"camphub/internal/stores"
	"camphub/internal/utils"
)

type ReviewHdl interface {
	ListReviews(c *gin.Context)
	ListBootcampReviews(c *gin.Context)
	GetReview(c *gin.Context)
	CreateReview(c *gin.Context)
	UpdateReview(c *gin.Context)
	DeleteReview(c *gin.Context)
}

type ReviewHandler struct {
	Config    *config.Config
	Pool      interfaces.PgxPoolIface
	Bootcamps *stores.DocumentStore
	Reviews   *stores.DocumentStore
}

func NewReviewHandler(cfg *config.Config, databaseMgr managers.DatabaseMgr) ReviewHdl {
	pool := databaseMgr.GetPool()
	return &ReviewHandler{
		Config:    cfg,
		Pool:      pool,
		Bootcamps: stores.NewDocumentStore(pool, stores.TableBootcamps),
		Reviews:   stores.NewDocumentStore(pool, stores.TableReviews),
	}
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	plan := query.Translate(c.Request.URL.Query(), h.Config)

	response, err := query.Paginate(c.Request.Context(), h.Reviews, plan, nil)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, response, http.StatusOK)
}

func (h *ReviewHandler) ListBootcampReviews(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "bootcampId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	plan := query.Translate(c.Request.URL.Query(), h.Config)
	plan.Filters = append(plan.Filters, query.Filter{Field: "bootcamp", Op: query.OpEq, Value: id.String()})

	response, err := query.Paginate(c.Request.Context(), h.Reviews, plan, nil)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, response, http.StatusOK)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "reviewId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	doc, err := h.Reviews.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.NewResourceNotFound(id.String()))
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(doc), http.StatusOK)
}

// CreateReview adds a review for a bootcamp on behalf of the principal and
// refreshes the bootcamp's average rating in the same transaction. A
// second review by the same account trips the per-bootcamp unique index
// and surfaces as a duplicate error.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	bootcampID, err := utils.ParseIDParam(c, "bootcampId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	payload := utils.GetPayload[schemas.ReviewRequest](c)
	principal := utils.GetPrincipal(c)

	if _, err := h.Bootcamps.FindByID(c.Request.Context(), bootcampID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.NewResourceNotFound(bootcampID.String()))
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	id := uuid.New()
	doc := reviewDocument(payload)
	doc["id"] = id.String()
	doc["bootcamp"] = bootcampID.String()
	doc["user"] = principal.ID.String()
	doc["createdAt"] = time.Now().UTC().Format(time.RFC3339)

	tx, err := utils.BeginTransaction(c, h.Pool)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	defer utils.RollbackTransaction(c, tx)

	if err := h.Reviews.WithTx(tx).Insert(c.Request.Context(), id, doc); err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if err := h.recomputeAverageRating(c.Request.Context(), tx, bootcampID); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if err := utils.CommitTransaction(c, tx); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(doc), http.StatusCreated)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "reviewId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	payload := utils.GetPayload[schemas.ReviewRequest](c)

	doc, err := h.authorizedReview(c, id, "update")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	tx, err := utils.BeginTransaction(c, h.Pool)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	defer utils.RollbackTransaction(c, tx)

	updated, err := h.Reviews.WithTx(tx).UpdateByID(c.Request.Context(), id, reviewDocument(payload))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if bootcampID, err := uuid.Parse(docString(doc, "bootcamp")); err == nil {
		if err := h.recomputeAverageRating(c.Request.Context(), tx, bootcampID); err != nil {
			utils.AbortWithError(c, err)
			return
		}
	}

	if err := utils.CommitTransaction(c, tx); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(updated), http.StatusOK)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "reviewId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	doc, err := h.authorizedReview(c, id, "delete")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	tx, err := utils.BeginTransaction(c, h.Pool)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	defer utils.RollbackTransaction(c, tx)

	if err := h.Reviews.WithTx(tx).DeleteByID(c.Request.Context(), id); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if bootcampID, err := uuid.Parse(docString(doc, "bootcamp")); err == nil {
		if err := h.recomputeAverageRating(c.Request.Context(), tx, bootcampID); err != nil {
			utils.AbortWithError(c, err)
			return
		}
	}

	if err := utils.CommitTransaction(c, tx); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(schemas.Document{}), http.StatusOK)
}

// authorizedReview loads a review and admits only its author or an admin.
func (h *ReviewHandler) authorizedReview(c *gin.Context, id uuid.UUID, action string) (schemas.Document, error) {
	doc, err := h.Reviews.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schemas.NewResourceNotFound(id.String())
		}
		return nil, err
	}

	principal := utils.GetPrincipal(c)
	if docString(doc, "user") != principal.ID.String() && principal.Role != schemas.RoleAdmin {
		return nil, schemas.NewCustomError(http.StatusUnauthorized, "Not authorized to "+action+" this review")
	}

	return doc, nil
}

// recomputeAverageRating rewrites the bootcamp's averageRating from the
// mean review rating, rounded to one decimal. No reviews left clears the
// field to null.
func (h *ReviewHandler) recomputeAverageRating(ctx context.Context, tx pgx.Tx, bootcampID uuid.UUID) error {
	avg, err := h.Reviews.WithTx(tx).Average(ctx, "rating", []query.Filter{
		{Field: "bootcamp", Op: query.OpEq, Value: bootcampID.String()},
	})
	if err != nil {
		return err
	}

	patch := schemas.Document{"averageRating": nil}
	if avg != nil {
		patch["averageRating"] = math.Round(*avg*10) / 10
	}

	_, err = h.Bootcamps.WithTx(tx).UpdateByID(ctx, bootcampID, patch)
	return err
}

func reviewDocument(payload *schemas.ReviewRequest) schemas.Document {
	return schemas.Document{
		"title":  payload.Title,
		"text":   payload.Text,
		"rating": payload.Rating,
	}
}
