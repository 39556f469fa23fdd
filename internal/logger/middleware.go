// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeaderName = "x-request-id"

	IncomingRequestMessage  = "incoming request"
	RequestCompletedMessage = "request completed"
)

// requestID returns the inbound request id, or generates a fresh one when
// the caller did not provide it.
func requestID(c *fiber.Ctx) string {
	if id := c.Get(requestIDHeaderName); id != "" {
		return id
	}

	id, err := uuid.NewRandom()
	if err != nil {
		panic(fmt.Errorf("error generating request id: %w", err))
	}
	return id.String()
}

// statusCode prefers the handler error code over the response one, so
// failing webhook deliveries are logged with the status the caller saw.
func statusCode(c *fiber.Ctx, handlerErr error) int {
	if fiberErr, ok := handlerErr.(*fiber.Error); handlerErr != nil && ok {
		return fiberErr.Code
	}

	return c.Response().StatusCode()
}

// RequestMiddleware is a fiber middleware that logs every request except the
// ones whose path starts with one of excludedPrefixes (status probes). The
// request logger is stored in the user context for downstream handlers.
func RequestMiddleware(log Logger, excludedPrefixes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := string(c.Request().URI().RequestURI())
		for _, prefix := range excludedPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		start := time.Now()
		requestLog := log.WithName("request").WithName(requestID(c))
		c.SetUserContext(WithContext(c.UserContext(), requestLog))

		requestLog.Trace(IncomingRequestMessage,
			"method", c.Method(),
			"path", path,
			"userAgent", c.Get("user-agent"),
		)

		err := c.Next()

		requestLog.Info(RequestCompletedMessage,
			"method", c.Method(),
			"path", path,
			"statusCode", statusCode(c, err),
			"responseTime", float64(time.Since(start).Milliseconds()),
		)

		return err
	}
}
