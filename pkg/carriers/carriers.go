package carriers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railline/pkg/database"
	"github.com/travigo/railline/pkg/network"
	"github.com/travigo/railline/pkg/stations"
	"gorm.io/gorm"
)

// Registry manages the carrier numbers attached to stations
type Registry struct {
	Session *database.Session
}

func NewRegistry(session *database.Session) *Registry {
	return &Registry{Session: session}
}

// AssignToFirstUnassigned gives cn to the lowest-id station without a carrier number.
// It refuses a carrier number that any station already carries.
func (r *Registry) AssignToFirstUnassigned(ctx context.Context, cn string) (uint, error) {
	cn, err := normalise(cn)
	if err != nil {
		return 0, err
	}

	db, err := r.Session.DB(ctx)
	if err != nil {
		return 0, err
	}

	var assigned uint
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&network.Station{}).Where("cn = ?", cn).Count(&existing).Error; err != nil {
			return network.StoreError(network.ErrStore, "checking carrier number", err)
		}
		if existing > 0 {
			return fmt.Errorf("%s: %w", cn, network.ErrDuplicateCN)
		}

		var station network.Station
		err := tx.Where("cn IS NULL").Order("id").First(&station).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return network.ErrNoEligibleStation
		} else if err != nil {
			return network.StoreError(network.ErrStore, "finding station without carrier number", err)
		}

		result := tx.Model(&network.Station{}).Where("id = ? AND cn IS NULL", station.ID).Update("cn", cn)
		if result.Error != nil {
			return network.StoreError(network.ErrStore, "assigning carrier number", result.Error)
		}
		if result.RowsAffected != 1 {
			return network.ErrNoEligibleStation
		}

		assigned = station.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Str("cn", cn).Uint("station", assigned).Msg("Assigned carrier number")

	return assigned, nil
}

// SetForStation overwrites a station's carrier number, a blank value clears it. Unlike
// AssignToFirstUnassigned it does not refuse duplicates, it only warns about them.
func (r *Registry) SetForStation(ctx context.Context, id uint, cn string) error {
	db, err := r.Session.DB(ctx)
	if err != nil {
		return err
	}

	var value *string
	if trimmed := strings.TrimSpace(cn); trimmed != "" {
		value = &trimmed
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := stations.FindStation(tx, id); err != nil {
			return err
		}

		if value != nil {
			var duplicates int64
			err := tx.Model(&network.Station{}).Where("cn = ? AND id <> ?", *value, id).Count(&duplicates).Error
			if err != nil {
				return network.StoreError(network.ErrStore, "checking carrier number", err)
			}
			if duplicates > 0 {
				log.Warn().Str("cn", *value).Uint("station", id).Int64("others", duplicates).Msg("Carrier number now shared with other stations")
			}
		}

		if err := tx.Model(&network.Station{}).Where("id = ?", id).Update("cn", value).Error; err != nil {
			return network.StoreError(network.ErrStore, "setting carrier number", err)
		}

		return nil
	})
}

// BulkAssignUnassigned tags every station lacking a carrier number with cn
func (r *Registry) BulkAssignUnassigned(ctx context.Context, cn string) (int64, error) {
	cn, err := normalise(cn)
	if err != nil {
		return 0, err
	}

	db, err := r.Session.DB(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Model(&network.Station{}).Where("cn IS NULL").Update("cn", cn)
	if result.Error != nil {
		return 0, network.StoreError(network.ErrStore, "bulk assigning carrier number", result.Error)
	}

	log.Info().Str("cn", cn).Int64("stations", result.RowsAffected).Msg("Bulk assigned carrier number")

	return result.RowsAffected, nil
}

func (r *Registry) ListDistinctCNs(ctx context.Context) ([]string, error) {
	db, err := r.Session.DB(ctx)
	if err != nil {
		return nil, err
	}

	cns := []string{}
	err = db.Model(&network.Station{}).Distinct("cn").Where("cn IS NOT NULL").Order("cn").Pluck("cn", &cns).Error
	if err != nil {
		return nil, network.StoreError(network.ErrStore, "listing carrier numbers", err)
	}

	return cns, nil
}

func normalise(cn string) (string, error) {
	cn = strings.TrimSpace(cn)
	if cn == "" {
		return "", fmt.Errorf("carrier number is empty: %w", network.ErrValidation)
	}

	return cn, nil
}
