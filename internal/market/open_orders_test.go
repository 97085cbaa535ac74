package market

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

func TestOpenOrders_ExcludesCancelledAndFilled(t *testing.T) {
	all := []models.RawOrder{
		buyOrder("1", 100, "1", "1"),
		buyOrder("2", 200, "1", "1"),
		buyOrder("3", 300, "1", "1"),
		buyOrder("4", 400, "1", "1"),
	}
	cancelled := []models.RawOrder{buyOrder("2", 200, "1", "1")}
	filled := []models.RawOrder{buyOrder("4", 400, "1", "1")}

	open := OpenOrders(all, cancelled, filled)

	ids := make([]string, 0, len(open))
	for _, o := range open {
		ids = append(ids, o.OrderID)
	}
	assert.ElementsMatch(t, []string{"1", "3"}, ids)
}

func TestOpenOrders_SubsetOfAll(t *testing.T) {
	all := []models.RawOrder{buyOrder("1", 100, "1", "1")}
	// 关闭集合里出现 all 之外的 id 不影响结果
	cancelled := []models.RawOrder{buyOrder("99", 100, "1", "1")}

	open := OpenOrders(all, cancelled, nil)
	assert.Len(t, open, 1)
	assert.Equal(t, "1", open[0].OrderID)
}

func TestOpenOrders_Empty(t *testing.T) {
	assert.Empty(t, OpenOrders(nil, nil, nil))

	all := []models.RawOrder{buyOrder("1", 100, "1", "1")}
	cancelled := []models.RawOrder{buyOrder("1", 100, "1", "1")}
	assert.Empty(t, OpenOrders(all, cancelled, nil))
}
