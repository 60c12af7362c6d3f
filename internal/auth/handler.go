package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/pkg/database"
	"github.com/constancia-hub/backend/pkg/response"
	"github.com/constancia-hub/backend/pkg/storage"
	"github.com/constancia-hub/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	JobTitle string `json:"job_title"`
	Role     string `json:"role"` // optional, defaults to evaluator
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string                 `json:"token"`
	User  models.EvaluatorPublic `json:"user"`
}

// Handler handles auth and evaluator-profile HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	media  *storage.S3
	logger *zap.Logger
}

// NewHandler creates an auth handler. media may be nil when S3 is disabled.
func NewHandler(repo *Repository, jwt *JWTService, media *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, media: media, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := models.RoleEvaluator
	if req.Role != "" {
		switch req.Role {
		case "admin":
			role = models.RoleAdmin
		case "evaluator":
			role = models.RoleEvaluator
		default:
			response.BadRequest(c, "invalid role")
			return
		}
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName, req.JobTitle, role)
	if err != nil {
		// A concurrent registration can slip past the lookup above and land
		// on the unique email index instead.
		if database.IsUniqueViolation(err) {
			response.BadRequest(c, "email already registered")
			return
		}
		response.Internal(c, "failed to create evaluator")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user.ToPublic()}})
}

// List handles GET /evaluators. Returns evaluators for signer selection.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list evaluators")
		return
	}
	c.JSON(http.StatusOK, response.Body{Success: true, Data: list})
}

// SetManager handles PATCH /evaluators/:id/manager (admin only). Designates
// the default signing manager; at most one evaluator holds the flag.
func (h *Handler) SetManager(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid evaluator id")
		return
	}
	if err := h.repo.SetManager(c.Request.Context(), id); err != nil {
		response.NotFound(c, "evaluator not found")
		return
	}
	response.OK(c, gin.H{"manager_id": id})
}

// UploadSignature handles POST /profile/signature (multipart "file").
// Stores the signature PNG in the media bucket and records its key.
func (h *Handler) UploadSignature(c *gin.Context) {
	h.uploadImage(c, storage.FolderSignatures, h.repo.UpdateSignatureKey)
}

// UploadPhoto handles POST /profile/photo (multipart "file").
func (h *Handler) UploadPhoto(c *gin.Context) {
	h.uploadImage(c, storage.FolderPhotos, h.repo.UpdatePhotoKey)
}

func (h *Handler) uploadImage(c *gin.Context, folder string, persist func(ctx context.Context, id uuid.UUID, key string) error) {
	if h.media == nil {
		response.ServiceUnavailable(c, "media storage not configured")
		return
	}
	val, ok := c.Get("user_id")
	userID, _ := val.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		response.Unauthorized(c, "missing user context")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fileHeader.Size > storage.MaxImageFileSize {
		response.BadRequest(c, "file too large")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.ValidateImageType(contentType, fileHeader.Filename) {
		response.BadRequest(c, "unsupported image type")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read file")
		return
	}
	defer f.Close()

	key := storage.MediaKey(folder, userID.String(), fileHeader.Filename)
	if _, err := h.media.Upload(c.Request.Context(), key, contentType, f, fileHeader.Size); err != nil {
		h.logger.Error("media upload failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to store image")
		return
	}
	if err := persist(c.Request.Context(), userID, key); err != nil {
		response.Internal(c, "failed to save image reference")
		return
	}
	response.OK(c, gin.H{"key": key})
}
