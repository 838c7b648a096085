package identifier

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ppec-inventory/internal/constants"
)

var (
	// ErrInvalidIdentifierFormat 批次号或序列号格式错误
	ErrInvalidIdentifierFormat = errors.New("invalid identifier format")
	// ErrCapacityExceeded 单日批次序号已用尽
	ErrCapacityExceeded = errors.New("daily batch sequence exhausted")
)

// FormatDate 将时间格式化为 YYYYMMDD
func FormatDate(t time.Time) string {
	return t.Format(constants.DateLayout)
}

// NextBatchNumber 根据当天日期与最后发放的批次号生成下一个批次号。
// lastIssued 为空表示尚未发放过批次号。日期变化（包括时钟回拨）时序号重置为 0001。
func NextBatchNumber(today, lastIssued string) (string, error) {
	if !isDigits(today, constants.DateWidth) {
		return "", fmt.Errorf("%w: date %q", ErrInvalidIdentifierFormat, today)
	}
	if lastIssued == "" {
		return formatBatchNumber(today, 1), nil
	}
	lastDate, seq, err := ParseBatchNumber(lastIssued)
	if err != nil {
		return "", err
	}
	if lastDate != today {
		return formatBatchNumber(today, 1), nil
	}
	if seq >= constants.MaxSequence {
		return "", fmt.Errorf("%w: %s", ErrCapacityExceeded, lastIssued)
	}
	return formatBatchNumber(today, seq+1), nil
}

// ParseBatchNumber 拆分批次号为日期与序号
func ParseBatchNumber(batchNumber string) (string, int, error) {
	if err := ValidateBatchNumber(batchNumber); err != nil {
		return "", 0, err
	}
	seq, err := strconv.Atoi(batchNumber[constants.DateWidth:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s", ErrInvalidIdentifierFormat, batchNumber)
	}
	return batchNumber[:constants.DateWidth], seq, nil
}

// ComponentSerial 生成组件序列号 <batchNumber>-<ordinal4>
func ComponentSerial(batchNumber string, ordinal int) (string, error) {
	if err := ValidateBatchNumber(batchNumber); err != nil {
		return "", err
	}
	if ordinal < 1 || ordinal > constants.MaxBatchComponents {
		return "", fmt.Errorf("%w: ordinal %d", ErrInvalidIdentifierFormat, ordinal)
	}
	return batchNumber + constants.SerialSeparator + fmt.Sprintf("%0*d", constants.OrdinalWidth, ordinal), nil
}

// ComponentSerials 按 1..n 顺序生成整批序列号
func ComponentSerials(batchNumber string, n int) ([]string, error) {
	if n < 1 || n > constants.MaxBatchComponents {
		return nil, fmt.Errorf("%w: quantity %d", ErrInvalidIdentifierFormat, n)
	}
	serials := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		serial, err := ComponentSerial(batchNumber, i)
		if err != nil {
			return nil, err
		}
		serials = append(serials, serial)
	}
	return serials, nil
}

// ValidateBatchNumber 校验批次号：12 位数字
func ValidateBatchNumber(batchNumber string) error {
	if !isDigits(batchNumber, constants.BatchNumberWidth) {
		return fmt.Errorf("%w: batch number %q", ErrInvalidIdentifierFormat, batchNumber)
	}
	return nil
}

// ValidateSerial 校验组件序列号：12 位数字 + "-" + 4 位数字
func ValidateSerial(serial string) error {
	if len(serial) != constants.SerialWidth ||
		serial[constants.BatchNumberWidth:constants.BatchNumberWidth+1] != constants.SerialSeparator ||
		!isDigits(serial[:constants.BatchNumberWidth], constants.BatchNumberWidth) ||
		!isDigits(serial[constants.BatchNumberWidth+1:], constants.OrdinalWidth) {
		return fmt.Errorf("%w: serial %q", ErrInvalidIdentifierFormat, serial)
	}
	return nil
}

// BatchNumberOf 从序列号中取出所属批次号
func BatchNumberOf(serial string) (string, error) {
	if err := ValidateSerial(serial); err != nil {
		return "", err
	}
	return serial[:constants.BatchNumberWidth], nil
}

// OrdinalOf 从序列号中取出组件序号
func OrdinalOf(serial string) (int, error) {
	if err := ValidateSerial(serial); err != nil {
		return 0, err
	}
	return strconv.Atoi(serial[constants.BatchNumberWidth+1:])
}

// IsBatchStem 判断文件名主干是否为批次记录：长度 12 且可解析为无符号整数
func IsBatchStem(stem string) bool {
	if len(stem) != constants.BatchNumberWidth {
		return false
	}
	_, err := strconv.ParseUint(stem, 10, 64)
	return err == nil
}

// IsSerialStem 判断文件名主干是否为组件记录：长度 17 且第 13 位为 "-"
func IsSerialStem(stem string) bool {
	return len(stem) == constants.SerialWidth &&
		strings.HasPrefix(stem[constants.BatchNumberWidth:], constants.SerialSeparator)
}

func formatBatchNumber(date string, seq int) string {
	return date + fmt.Sprintf("%0*d", constants.SequenceWidth, seq)
}

func isDigits(value string, width int) bool {
	if len(value) != width {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
