// internals/middlewares/activity/activity_tracker.go
package activity

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	activityModel "pmhub_backend/internals/features/users/activity/model"
	sessionService "pmhub_backend/internals/features/users/sessions/service"
	helper "pmhub_backend/internals/helpers"
	authMw "pmhub_backend/internals/middlewares/auth"
)

// Tabel pola path → resource_type. Segmen setelah nama resource dianggap id.
var resourceSegments = map[string]string{
	"projects":    "project",
	"subprojects": "subproject",
	"stages":      "stage",
	"tasks":       "task",
	"files":       "file",
	"sessions":    "session",
	"users":       "user",
}

// Tracker mencatat setiap request terautentikasi: validasi liveness sesi,
// touch last_activity, jalankan handler, lalu tulis baris activity log.
func Tracker(db *gorm.DB, registry *sessionService.SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := authMw.GetUserUUID(c)
		if err != nil {
			return err
		}

		// Liveness check + touch sebelum handler jalan.
		if err := registry.CheckAndTouch(userID); err != nil {
			switch {
			case errors.Is(err, sessionService.ErrSessionExpired),
				errors.Is(err, sessionService.ErrNoActiveSession):
				writeLog(db, c, userID, fiber.StatusUnauthorized, "SESSION_EXPIRED")
				return helper.JsonErrorWithCode(c, fiber.StatusUnauthorized, "SESSION_EXPIRED", "会话已过期，请重新登录")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
			}
		}

		handlerErr := c.Next()

		status := c.Response().StatusCode()
		detail := ""
		if handlerErr != nil {
			var fe *fiber.Error
			if errors.As(handlerErr, &fe) {
				status = fe.Code
				detail = fe.Message
			} else {
				status = fiber.StatusInternalServerError
				detail = handlerErr.Error()
			}
		}

		writeLog(db, c, userID, status, detail)
		return handlerErr
	}
}

func writeLog(db *gorm.DB, c *fiber.Ctx, userID uuid.UUID, status int, detail string) {
	endpoint := c.Route().Path
	actionType := fmt.Sprintf("%s_%s", c.Method(), endpoint)
	if status >= fiber.StatusInternalServerError {
		actionType = "error"
	}

	resType, resID := resolveResource(c)

	row := activityModel.ActivityLogModel{
		ActivityLogUserID:     userID,
		ActivityLogActionType: actionType,
		ActivityLogStatusCode: status,
		ActivityLogMethod:     c.Method(),
		ActivityLogEndpoint:   endpoint,
		ActivityLogPath:       c.Path(),
		ActivityLogIP:         ResolveClientIP(c),
	}
	if detail != "" {
		row.ActivityLogActionDetail = &detail
	}
	if resType != "" {
		row.ActivityLogResourceType = &resType
		row.ActivityLogResourceID = resID
	}
	row.ActivityLogContext = buildContext(c)

	if err := db.Create(&row).Error; err != nil {
		log.Printf("[ERROR] tulis activity log: %v", err)
	}
}

// buildContext merangkum request ke payload JSON: request id, query string,
// dan ukuran body untuk request yang mengubah data. Isi body tidak pernah
// disimpan (bisa memuat kredensial).
func buildContext(c *fiber.Ctx) datatypes.JSON {
	payload := map[string]interface{}{}

	if reqID, ok := c.Locals("reqid").(string); ok && reqID != "" {
		payload["request_id"] = reqID
	}
	if qs := string(c.Request().URI().QueryString()); qs != "" {
		payload["query"] = qs
	}
	if c.Method() != fiber.MethodGet {
		if n := len(c.Body()); n > 0 {
			payload["bytes_in"] = n
		}
	}

	if len(payload) == 0 {
		return nil
	}
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// resolveResource mencocokkan path dengan tabel pola; kalau tidak ketemu,
// pakai route param pertama yang berakhiran _id.
func resolveResource(c *fiber.Ctx) (string, *uuid.UUID) {
	segments := strings.Split(strings.Trim(c.Path(), "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if resType, ok := resourceSegments[segments[i]]; ok {
			if id, err := uuid.Parse(segments[i+1]); err == nil {
				return resType, &id
			}
		}
	}

	for _, name := range c.Route().Params {
		if !strings.HasSuffix(name, "_id") && name != "id" {
			continue
		}
		if id, err := uuid.Parse(c.Params(name)); err == nil {
			resType := strings.TrimSuffix(name, "_id")
			if resType == "id" || resType == "" {
				resType = "unknown"
			}
			return resType, &id
		}
	}
	return "", nil
}

// ResolveClientIP: X-Forwarded-For (elemen pertama) → X-Real-IP →
// CF-Connecting-IP → True-Client-IP → peer address. Loopback dilewati.
func ResolveClientIP(c *fiber.Ctx) string {
	candidates := []string{}

	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			candidates = append(candidates, first)
		}
	}
	for _, h := range []string{"X-Real-IP", "CF-Connecting-IP", "True-Client-IP"} {
		if v := strings.TrimSpace(c.Get(h)); v != "" {
			candidates = append(candidates, v)
		}
	}
	candidates = append(candidates, c.IP())

	for _, cand := range candidates {
		ip := net.ParseIP(cand)
		if ip == nil {
			continue
		}
		if ip.IsLoopback() {
			continue
		}
		return cand
	}
	return c.IP()
}
