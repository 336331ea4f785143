// Package request holds the input helpers shared by the domain handlers.
package request

import (
	"fmt"
	"strconv"
	"strings"

	"catalog-api/internal/shared/apperror"
	"catalog-api/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// ParamID parses a positive integer path parameter. A malformed id can match
// no entity, so the response is 404.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, "Not found.")
		return 0, false
	}
	return id, true
}

// BindJSON decodes the request body into dst, answering 400 on malformed JSON.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, "Malformed request body: "+err.Error())
		return false
	}
	return true
}

// QueryID parses an optional id filter such as ?author=3. An absent or empty
// value yields nil.
func QueryID(c *gin.Context, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperror.Invalid(key, apperror.CodeInvalid, apperror.MsgInvalidChoice)
	}
	return &id, nil
}

// QueryIDs parses a repeated id filter (?categories=1&categories=2). Empty
// values are skipped.
func QueryIDs(c *gin.Context, key string) ([]int64, error) {
	var ids []int64
	for _, raw := range c.QueryArray(key) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperror.Invalid(key, apperror.CodeInvalid, fmt.Sprintf("%q is not a valid value.", raw))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
