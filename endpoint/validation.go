package endpoint

import (
	"fmt"
	"sync"
	"time"

	"github.com/ariebrainware/clinic-reservation/slot"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// isoDate accepts YYYY-MM-DD calendar dates.
var isoDate validator.Func = func(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// clockTime accepts HH:MM wall-clock times.
var clockTime validator.Func = func(fl validator.FieldLevel) bool {
	_, err := slot.ParseClock(fl.Field().String())
	return err == nil
}

// RegisterValidators installs the isodate and clocktime binding tags on
// gin's validator.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("isodate", isoDate); err != nil {
			return
		}
		err = v.RegisterValidation("clocktime", clockTime)
	})
	return err
}
