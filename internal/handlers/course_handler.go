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

type CourseHdl interface {
	ListCourses(c *gin.Context)
	ListBootcampCourses(c *gin.Context)
	GetCourse(c *gin.Context)
	CreateCourse(c *gin.Context)
	UpdateCourse(c *gin.Context)
	DeleteCourse(c *gin.Context)
}

type CourseHandler struct {
	Config    *config.Config
	Pool      interfaces.PgxPoolIface
	Bootcamps *stores.DocumentStore
	Courses   *stores.DocumentStore
}

func NewCourseHandler(cfg *config.Config, databaseMgr managers.DatabaseMgr) CourseHdl {
	pool := databaseMgr.GetPool()
	return &CourseHandler{
		Config:    cfg,
		Pool:      pool,
		Bootcamps: stores.NewDocumentStore(pool, stores.TableBootcamps),
		Courses:   stores.NewDocumentStore(pool, stores.TableCourses),
	}
}

// ListCourses lists all courses through the generic pipeline, with a
// name/description summary of the owning bootcamp inlined.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	plan := query.Translate(c.Request.URL.Query(), h.Config)

	response, err := query.Paginate(c.Request.Context(), h.Courses, plan, h.expandBootcamp)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, response, http.StatusOK)
}

// ListBootcampCourses scopes the pipeline to the courses of one bootcamp.
func (h *CourseHandler) ListBootcampCourses(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "bootcampId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	plan := query.Translate(c.Request.URL.Query(), h.Config)
	plan.Filters = append(plan.Filters, query.Filter{Field: "bootcamp", Op: query.OpEq, Value: id.String()})

	response, err := query.Paginate(c.Request.Context(), h.Courses, plan, h.expandBootcamp)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, response, http.StatusOK)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "courseId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	doc, err := h.Courses.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.NewResourceNotFound(id.String()))
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	docs := []schemas.Document{doc}
	if err := h.expandBootcamp(c.Request.Context(), docs); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(docs[0]), http.StatusOK)
}

// CreateCourse adds a course under a bootcamp and refreshes the
// bootcamp's average cost in the same transaction.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	bootcampID, err := utils.ParseIDParam(c, "bootcampId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	payload := utils.GetPayload[schemas.CourseRequest](c)
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
	doc := courseDocument(payload)
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

	if err := h.Courses.WithTx(tx).Insert(c.Request.Context(), id, doc); err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if err := h.recomputeAverageCost(c.Request.Context(), tx, bootcampID); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if err := utils.CommitTransaction(c, tx); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(doc), http.StatusCreated)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "courseId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	payload := utils.GetPayload[schemas.CourseRequest](c)

	tx, err := utils.BeginTransaction(c, h.Pool)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	defer utils.RollbackTransaction(c, tx)

	updated, err := h.Courses.WithTx(tx).UpdateByID(c.Request.Context(), id, courseDocument(payload))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.NewResourceNotFound(id.String()))
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	if bootcampID, err := uuid.Parse(docString(updated, "bootcamp")); err == nil {
		if err := h.recomputeAverageCost(c.Request.Context(), tx, bootcampID); err != nil {
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

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "courseId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	doc, err := h.Courses.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.NewResourceNotFound(id.String()))
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	tx, err := utils.BeginTransaction(c, h.Pool)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	defer utils.RollbackTransaction(c, tx)

	if err := h.Courses.WithTx(tx).DeleteByID(c.Request.Context(), id); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if bootcampID, err := uuid.Parse(docString(doc, "bootcamp")); err == nil {
		if err := h.recomputeAverageCost(c.Request.Context(), tx, bootcampID); err != nil {
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

// recomputeAverageCost rewrites the bootcamp's averageCost from the mean
// tuition of its courses, rounded up to the nearest ten. No courses left
// clears the field to null.
func (h *CourseHandler) recomputeAverageCost(ctx context.Context, tx pgx.Tx, bootcampID uuid.UUID) error {
	avg, err := h.Courses.WithTx(tx).Average(ctx, "tuition", []query.Filter{
		{Field: "bootcamp", Op: query.OpEq, Value: bootcampID.String()},
	})
	if err != nil {
		return err
	}

	patch := schemas.Document{"averageCost": nil}
	if avg != nil {
		patch["averageCost"] = math.Ceil(*avg/10) * 10
	}

	_, err = h.Bootcamps.WithTx(tx).UpdateByID(ctx, bootcampID, patch)
	return err
}

// expandBootcamp replaces each course's bootcamp reference with an id,
// name and description summary of the owning bootcamp.
func (h *CourseHandler) expandBootcamp(ctx context.Context, docs []schemas.Document) error {
	summaries := make(map[string]schemas.Document)

	for _, doc := range docs {
		ref := docString(doc, "bootcamp")
		id, err := uuid.Parse(ref)
		if err != nil {
			continue
		}

		summary, ok := summaries[ref]
		if !ok {
			bootcamp, err := h.Bootcamps.FindByID(ctx, id)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					continue
				}
				return err
			}
			summary = schemas.Document{
				"id":          bootcamp.ID(),
				"name":        bootcamp["name"],
				"description": bootcamp["description"],
			}
			summaries[ref] = summary
		}
		doc["bootcamp"] = summary
	}

	return nil
}

func courseDocument(payload *schemas.CourseRequest) schemas.Document {
	return schemas.Document{
		"title":                payload.Title,
		"description":          payload.Description,
		"weeks":                payload.Weeks,
		"tuition":              payload.Tuition,
		"minimumSkill":         payload.MinimumSkill,
		"scholarshipAvailable": payload.Scholarship,
	}
}

func docString(doc schemas.Document, key string) string {
	if value, ok := doc[key].(string); ok {
		return value
	}
	return ""
}
