package mockapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"subscription_console/pkg/apperrors"
)

// Fault - искажение ответа маршрута: задержка и/или ошибка
type Fault struct {
	Delay   time.Duration
	Status  int
	Message string
}

const delayKey = "mockapi.delay"

// faults: ключ "METHOD /path" (фактический путь, например "DELETE /api/plans/3").
// sticky действуют всегда, once - по очереди, по одной на запрос.
type faults struct {
	mu     sync.Mutex
	sticky map[string]Fault
	once   map[string][]Fault
}

func newFaults() *faults {
	return &faults{
		sticky: make(map[string]Fault),
		once:   make(map[string][]Fault),
	}
}

func (f *faults) next(key string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if queue := f.once[key]; len(queue) > 0 {
		fault := queue[0]
		f.once[key] = queue[1:]
		return fault, true
	}
	fault, ok := f.sticky[key]
	return fault, ok
}

func (f *faults) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		fault, ok := f.next(c.Request.Method + " " + c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		if fault.Status == 0 {
			// задержка применяется после того, как обработчик прочитал данные:
			// медленный ответ несёт снимок на момент запроса
			c.Set(delayKey, fault.Delay)
			c.Next()
			return
		}

		if !sleep(c, fault.Delay) {
			c.Abort()
			return
		}
		msg := fault.Message
		if msg == "" {
			msg = http.StatusText(fault.Status)
		}
		code := apperrors.CodeServerError
		if fault.Status == http.StatusUnauthorized {
			code = apperrors.CodeUnauthorized
		}
		apperrors.HandleError(c, apperrors.New(code, "mock", msg, fault.Status))
	}
}

// reply пишет JSON с учётом задержки маршрута
func reply(c *gin.Context, status int, body interface{}) {
	if d, ok := c.Get(delayKey); ok {
		if !sleep(c, d.(time.Duration)) {
			return
		}
	}
	c.JSON(status, body)
}

func sleep(c *gin.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.Request.Context().Done():
		return false
	}
}
