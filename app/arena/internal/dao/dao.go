package dao

import (
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
)

// psql 统一使用 $n 占位符
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// observe 记录查询耗时，配合 defer 使用，未找到不计为失败
func observe(m *metrics.ArenaMetrics, op string, start time.Time, err *error) {
	success := *err == nil || errors.Is(*err, model.ErrNotFound)
	m.RecordDBQuery(op, success, time.Since(start).Seconds())
}
