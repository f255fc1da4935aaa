package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/api/middleware"
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/service"
	"github.com/shorebytelabs/nailsbyabri/internal/wizard"
)

const maxUploadBytes = 10 << 20

// ActionRequest is one wizard action on the wire, discriminated by type.
type ActionRequest struct {
	Type      string          `json:"type" binding:"required"`
	SetID     string          `json:"set_id,omitempty"`
	UploadID  string          `json:"upload_id,omitempty"`
	ShapeID   string          `json:"shape_id,omitempty"`
	Text      string          `json:"text,omitempty"`
	On        bool            `json:"on,omitempty"`
	Mode      string          `json:"mode,omitempty"`
	Finger    string          `json:"finger,omitempty"`
	Value     string          `json:"value,omitempty"`
	Option    string          `json:"option,omitempty"`
	ProfileID string          `json:"profile_id,omitempty"`
	Quantity  int             `json:"quantity,omitempty"`
	Method    string          `json:"method,omitempty"`
	Speed     string          `json:"speed,omitempty"`
	Address   *domain.Address `json:"address,omitempty"`
}

// HandleGetDraftState handles GET /v1/draft
func HandleGetDraftState(drafts *service.DraftService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		st, err := drafts.State(c.Request.Context(), userID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.NewStateResponse(st))
	}
}

// HandleApplyAction handles POST /v1/draft/actions
func HandleApplyAction(drafts *service.DraftService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req ActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		// select_profile needs the stored profile, so it routes through its
		// own service method.
		if req.Type == "select_profile" {
			st, err := drafts.SelectProfile(c.Request.Context(), userID, req.ProfileID)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			c.JSON(http.StatusOK, service.NewStateResponse(st))
			return
		}

		action, err := decodeAction(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		st, err := drafts.Apply(c.Request.Context(), userID, action)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.NewStateResponse(st))
	}
}

// HandlePricingPreview handles GET /v1/draft/pricing
func HandlePricingPreview(drafts *service.DraftService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		breakdown, err := drafts.Preview(c.Request.Context(), userID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, breakdown)
	}
}

// HandleApplyPromo handles POST /v1/draft/promo
func HandleApplyPromo(drafts *service.DraftService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var req struct {
			Code string `json:"code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "promo code required"})
			return
		}
		st, err := drafts.ApplyPromo(c.Request.Context(), userID, req.Code)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.NewStateResponse(st))
	}
}

// HandleClearPromo handles DELETE /v1/draft/promo
func HandleClearPromo(drafts *service.DraftService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		st, err := drafts.ClearPromo(c.Request.Context(), userID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.NewStateResponse(st))
	}
}

// HandleAutosave handles POST /v1/draft/autosave
func HandleAutosave(drafts *service.DraftService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		st, err := drafts.Autosave(c.Request.Context(), userID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.NewStateResponse(st))
	}
}

// HandleUpload handles POST /v1/draft/uploads. Multipart form with a "file"
// part and a "kind" field (design or sizing). The response returns
// immediately with the upload in pending state; the client polls draft state
// for resolution.
func HandleUpload(drafts *service.DraftService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		kind := domain.UploadKind(c.PostForm("kind"))
		if kind != domain.UploadKindDesign && kind != domain.UploadKindSizing {
			c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be design or sizing"})
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file part required"})
			return
		}
		defer file.Close()
		if header.Size > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", maxUploadBytes)})
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
			return
		}

		st, err := drafts.Upload(c.Request.Context(), userID, kind, header.Filename, data)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusAccepted, service.NewStateResponse(st))
	}
}

func decodeAction(req ActionRequest) (wizard.Action, error) {
	switch req.Type {
	case "next":
		return wizard.GoNext{}, nil
	case "back":
		return wizard.GoBack{}, nil
	case "save_set":
		return wizard.SaveSet{}, nil
	case "add_another":
		return wizard.AddAnother{}, nil
	case "edit_set":
		id, err := uuid.Parse(req.SetID)
		if err != nil {
			return nil, fmt.Errorf("edit_set requires a valid set_id")
		}
		return wizard.EditSet{ID: id}, nil
	case "set_shape":
		return wizard.SetShape{ShapeID: req.ShapeID}, nil
	case "set_description":
		return wizard.SetDescription{Text: req.Text}, nil
	case "set_design_help":
		return wizard.SetDesignHelp{On: req.On}, nil
	case "set_sizing_help":
		return wizard.SetSizingHelp{On: req.On}, nil
	case "remove_upload":
		id, err := uuid.Parse(req.UploadID)
		if err != nil {
			return nil, fmt.Errorf("remove_upload requires a valid upload_id")
		}
		return wizard.RemoveUpload{ID: id}, nil
	case "set_size_mode":
		mode := domain.SizeMode(req.Mode)
		if mode != domain.SizeModeStandard && mode != domain.SizeModePerSet {
			return nil, fmt.Errorf("unknown size mode %q", req.Mode)
		}
		return wizard.SetSizeMode{Mode: mode}, nil
	case "set_finger_size":
		finger := domain.Finger(req.Finger)
		if !finger.IsValid() {
			return nil, fmt.Errorf("unknown finger %q", req.Finger)
		}
		return wizard.SetFingerSize{Finger: finger, Value: req.Value}, nil
	case "select_sizing_option":
		return wizard.SelectSizingOption{Option: domain.SizingOption(req.Option)}, nil
	case "set_quantity":
		return wizard.SetQuantity{N: req.Quantity}, nil
	case "set_delivery_method":
		method := domain.DeliveryMethodID(req.Method)
		if !method.IsValid() {
			return nil, fmt.Errorf("unknown delivery method %q", req.Method)
		}
		return wizard.SetDeliveryMethod{Method: method, Speed: domain.DeliverySpeed(req.Speed)}, nil
	case "set_address":
		if req.Address == nil {
			return nil, fmt.Errorf("set_address requires an address")
		}
		return wizard.SetAddress{Addr: *req.Address}, nil
	case "set_notes":
		return wizard.SetNotes{Text: req.Text}, nil
	case "set_save_address":
		return wizard.SetSaveAddress{On: req.On}, nil
	case "clear_notices":
		return wizard.ClearNotices{}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", req.Type)
	}
}
