package handlers

import (
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

type UserHdl interface {
	ListUsers(c *gin.Context)
	GetUser(c *gin.Context)
	CreateUser(c *gin.Context)
	UpdateUser(c *gin.Context)
	DeleteUser(c *gin.Context)
}

// UserHandler implements the admin-only account management endpoints. The
// whole group is mounted behind the guard with the admin role required.
type UserHandler struct {
	Config *config.Config
	Pool   interfaces.PgxPoolIface
	Users  *stores.UserStore
	List   *stores.UserCollection
}

func NewUserHandler(cfg *config.Config, databaseMgr managers.DatabaseMgr) UserHdl {
	pool := databaseMgr.GetPool()
	return &UserHandler{
		Config: cfg,
		Pool:   pool,
		Users:  stores.NewUserStore(pool),
		List:   stores.NewUserCollection(pool),
	}
}

// ListUsers runs the generic list pipeline over the accounts table.
func (h *UserHandler) ListUsers(c *gin.Context) {
	plan := query.Translate(c.Request.URL.Query(), h.Config)

	response, err := query.Paginate(c.Request.Context(), h.List, plan, nil)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, response, http.StatusOK)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "userId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	account, err := h.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.NewResourceNotFound(id.String()))
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(account), http.StatusOK)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	payload := utils.GetPayload[schemas.CreateUserRequest](c)

	hashed, err := stores.HashPassword(payload.Password)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	role := payload.Role
	if role == "" {
		role = schemas.RoleUser
	}

	account := &schemas.Account{
		ID:        uuid.New(),
		Name:      payload.Name,
		Email:     payload.Email,
		Role:      role,
		Password:  hashed,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.Users.Create(c.Request.Context(), account); err != nil {
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(account), http.StatusCreated)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "userId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	payload := utils.GetPayload[schemas.UpdateUserRequest](c)

	// Role and details change together or not at all
	tx, err := utils.BeginTransaction(c, h.Pool)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	defer utils.RollbackTransaction(c, tx)

	users := h.Users.WithTx(tx)

	if payload.Role != "" {
		if err := users.UpdateRole(c.Request.Context(), id, payload.Role); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				utils.AbortWithError(c, schemas.NewResourceNotFound(id.String()))
				return
			}
			utils.AbortWithError(c, err)
			return
		}
	}

	updated, err := users.UpdateDetails(c.Request.Context(), id, payload.Name, payload.Email)
	if err != nil {
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

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(updated), http.StatusOK)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "userId")
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.AbortWithError(c, schemas.NewResourceNotFound(id.String()))
			return
		}
		utils.AbortWithError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, schemas.NewDataResponse(schemas.Document{}), http.StatusOK)
}
