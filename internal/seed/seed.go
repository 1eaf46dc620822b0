// Package seed fills a development database with sample users.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/sakif/birthday-tracker/internal/apperror"
	"github.com/sakif/birthday-tracker/internal/model"
	"github.com/sakif/birthday-tracker/internal/repository"
)

// Count is the number of sample users; their Telegram ids are 0..Count-1.
const Count = 10

// Run inserts the sample users that are not yet present and returns how many
// it created. Running it again is a no-op.
func Run(ctx context.Context, store repository.Store, logger *slog.Logger, faker *gofakeit.Faker) (int, error) {
	logger.Info("seeding database", slog.Int("users", Count))

	inserted := 0
	err := store.Session(ctx, func(users repository.UserRepository) error {
		for i := range Count {
			telegramID := int64(i)

			_, err := users.GetByTelegramID(ctx, telegramID)
			if err == nil {
				continue
			}
			if !errors.Is(err, apperror.ErrNotFound) {
				return err
			}

			firstName := faker.FirstName()
			lastName := faker.LastName()
			username := faker.Username()
			user := model.NewUser(model.UserCreate{
				TelegramID: &telegramID,
				FirstName:  &firstName,
				LastName:   &lastName,
				Username:   &username,
			})
			if err := users.Create(ctx, user); err != nil {
				return fmt.Errorf("seeding telegram id %d: %w", telegramID, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return inserted, err
	}

	logger.Info("database seeded", slog.Int("inserted", inserted))
	return inserted, nil
}
