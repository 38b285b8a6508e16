package dto

import (
	"errors"
	"sync"

	"github.com/SscSPs/subledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the ledger's custom binding tags (account_code, currency_code)
// to gin's validator engine. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		if err = v.RegisterValidation("account_code", func(fl validator.FieldLevel) bool {
			return domain.IsValidAccountCode(fl.Field().String())
		}); err != nil {
			return
		}
		err = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
			return domain.IsValidCurrencyCode(fl.Field().String())
		})
	})
	return err
}
