package otp

import "regexp"

// 10 位手机号，首位限 6-9。
var phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// ValidPhone 校验手机号格式，不触碰任何状态。
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
