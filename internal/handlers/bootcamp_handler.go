package handlers

import (
	"context"
	"errors"
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

type BootcampHdl interface {
	ListBootcamps(c *gin.Context)
	GetBootcamp(c *gin.Context)
	CreateBootcamp(c *gin.Context)
	UpdateBootcamp(c *gin.Context)
	DeleteBootcamp(c *gin.Context)
}

type BootcampHandler struct {
	Config    *config.Config
	Pool      interfaces.PgxPoolIface
	Bootcamps *stores.DocumentStore
	Courses   *stores.DocumentStore
	Reviews   *stores.DocumentStore
}

func NewBootcampHandler(cfg *config.Config, databaseMgr managers.DatabaseMgr) BootcampHdl {
	pool := databaseMgr.GetPool()
	return &BootcampHandler{
		Config:    cfg,
		Pool:      pool,
		Bootcamps: stores.NewDocumentStore(pool, stores.TableBootcamps),
		Courses:   stores.NewDocumentStore(pool, stores.TableCourses),
		Reviews:   stores.NewDocumentStore(pool, stores.TableReviews),
	}
}

// ListBootcamps runs the generic list pipeline over the bootcamps
// collection, with the owned courses inlined into each result.
func (h *BootcampHandler) ListBootcamps(c *gin.Context) {
	plan := query.Translate(c.Request.URL.Query(), h.Config)

	response, err := query.Paginate(c.Request.Context(), h.Bootcamps, plan, h.expandCourses)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, response, http.StatusOK)
}

func (h *BootcampHandler) GetBootcamp(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "bootcampId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	doc, err := h.Bootcamps.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.NewResourceNotFound(id.String()))
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	docs := []schemas.Document{doc}
	if err := h.expandCourses(c.Request.Context(), docs); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(docs[0]), http.StatusOK)
}

func (h *BootcampHandler) CreateBootcamp(c *gin.Context) {
	payload := utils.GetPayload[schemas.BootcampRequest](c)
	principal := utils.GetPrincipal(c)

	id := uuid.New()
	doc := bootcampDocument(payload)
	doc["id"] = id.String()
	doc["user"] = principal.ID.String()
	doc["createdAt"] = time.Now().UTC().Format(time.RFC3339)

	if err := h.Bootcamps.Insert(c.Request.Context(), id, doc); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(doc), http.StatusCreated)
}

func (h *BootcampHandler) UpdateBootcamp(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "bootcampId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	payload := utils.GetPayload[schemas.BootcampRequest](c)

	updated, err := h.Bootcamps.UpdateByID(c.Request.Context(), id, bootcampDocument(payload))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.NewResourceNotFound(id.String()))
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(updated), http.StatusOK)
}

// DeleteBootcamp removes a bootcamp and cascades to its courses and
// reviews in one transaction.
func (h *BootcampHandler) DeleteBootcamp(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "bootcampId")
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

	owned := []query.Filter{{Field: "bootcamp", Op: query.OpEq, Value: id.String()}}
	if err := h.Courses.WithTx(tx).DeleteWhere(c.Request.Context(), owned); err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if err := h.Reviews.WithTx(tx).DeleteWhere(c.Request.Context(), owned); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if err := h.Bootcamps.WithTx(tx).DeleteByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.NewResourceNotFound(id.String()))
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	if err := utils.CommitTransaction(c, tx); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(schemas.Document{}), http.StatusOK)
}

// expandCourses inlines each bootcamp's courses under its courses key.
func (h *BootcampHandler) expandCourses(ctx context.Context, docs []schemas.Document) error {
	for _, doc := range docs {
		plan := query.Plan{
			Filters: []query.Filter{{Field: "bootcamp", Op: query.OpEq, Value: doc.ID()}},
			Sort:    []query.SortKey{{Field: "createdAt", Desc: true}},
			Page:    1,
			Limit:   h.Config.MaxPageSize,
		}
		courses, err := h.Courses.Find(ctx, plan)
		if err != nil {
			return err
		}
		doc["courses"] = courses
	}
	return nil
}

func bootcampDocument(payload *schemas.BootcampRequest) schemas.Document {
	careers := payload.Careers
	if careers == nil {
		careers = []string{}
	}
	return schemas.Document{
		"name":          payload.Name,
		"description":   payload.Description,
		"website":       payload.Website,
		"phone":         payload.Phone,
		"email":         payload.Email,
		"address":       payload.Address,
		"careers":       careers,
		"housing":       payload.Housing,
		"jobAssistance": payload.JobAssist,
	}
}
