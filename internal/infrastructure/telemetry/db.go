package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// InstrumentGorm registers the otelgorm plugin so every statement becomes a
// span carrying db.system. Query variables are never attached since they
// contain guest names and ID numbers.
func InstrumentGorm(db *gorm.DB, dbSystem string) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(dbSystem),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}
	return nil
}
