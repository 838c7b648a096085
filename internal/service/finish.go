package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppec-inventory/internal/constants"

	"github.com/go-playground/validator/v10"
)

// paintCodePattern 两位大写字母 + 两位数字
var paintCodePattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}$`)

// inputValidator 服务层共享的校验器，注册了 paint_code 标签
var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("paint_code", func(fl validator.FieldLevel) bool {
		return paintCodePattern.MatchString(fl.Field().String())
	})
	return v
}

// ParseFinish 将操作员选择转换为表面处理值：polished → Polished，painted + AA00 → Paint:AA00
func ParseFinish(choice, paintCode string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case constants.FinishChoicePolished:
		return constants.FinishPolished, nil
	case constants.FinishChoicePainted:
		code := strings.ToUpper(strings.TrimSpace(paintCode))
		if !isPaintCode(code) {
			return "", fmt.Errorf("%w: paint code %q", ErrInvalidFinish, paintCode)
		}
		return constants.FinishPaintPrefix + code, nil
	default:
		return "", fmt.Errorf("%w: choice %q", ErrInvalidFinish, choice)
	}
}

// ValidateFinish 校验写入组件的表面处理值
func ValidateFinish(finish string) error {
	if finish == constants.FinishPolished {
		return nil
	}
	if strings.HasPrefix(finish, constants.FinishPaintPrefix) && isPaintCode(strings.TrimPrefix(finish, constants.FinishPaintPrefix)) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidFinish, finish)
}

func isPaintCode(code string) bool {
	return inputValidator.Var(code, "required,paint_code") == nil
}
