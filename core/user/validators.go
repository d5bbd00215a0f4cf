package user

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/biglotteryfund/funding/core"
	appfs "github.com/biglotteryfund/funding/fs"
)

const commonPasswordsPath = "assets/common-passwords.txt.gz"

var (
	allRolesTag  = "allroles"
	allRolesText = core.Copy{En: "Invalid roles", Cy: "Rolau annilys"}

	usernameOrEmailTag  = "username_or_email"
	usernameOrEmailText = core.Copy{
		En: "One of username or email is required",
		Cy: "Mae angen un o enw defnyddiwr neu e-bost",
	}

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = core.Copy{
		En: fmt.Sprintf("Password must contain at least %d characters", pwdMinLen),
		Cy: fmt.Sprintf("Rhaid i'r cyfrinair gynnwys o leiaf %d nod", pwdMinLen),
	}

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = core.Copy{En: "Password must not contain whitespace", Cy: "Ni ddylai'r cyfrinair gynnwys bylchau"}

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = core.Copy{En: "Password cannot be entirely numeric", Cy: "Ni all y cyfrinair fod yn rhifau i gyd"}

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = core.Copy{
		En: "Password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
		Cy: "Rhaid i'r cyfrinair gynnwys o leiaf 1 priflythyren, 1 llythyren fach, 1 digid ac 1 nod arbennig",
	}
	specialRegex = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = core.Copy{
		En: "Password cannot be similar to your other details",
		Cy: "Ni all y cyfrinair fod yn debyg i'ch manylion eraill",
	}

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = core.Copy{En: "Password is too common", Cy: "Mae'r cyfrinair yn rhy gyffredin"}

	commonPasswords     []string
	commonPasswordsOnce sync.Once
)

// InitValidators registers the user validations and their texts.
func InitValidators(validate *validator.Validate, uni *ut.UniversalTranslator) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	validate.RegisterStructValidation(userStructValidation, NewUser{}, UpdateUser{})

	for tag, text := range map[string]core.Copy{
		allRolesTag:        allRolesText,
		usernameOrEmailTag: usernameOrEmailText,
		pwdMinLenTag:       pwdMinLenText,
		pwdNoSpaceTag:      pwdNoSpaceText,
		pwdNotAllNumTag:    pwdNotAllNumText,
		pwdComplexityTag:   pwdComplexityText,
		pwdAttrSimTag:      pwdAttrSimText,
		pwdNoCommonTag:     pwdNoCommonText,
	} {
		core.RegisterLocalisedTranslation(validate, uni, tag, text)
	}
}

func loadCommonPasswords() {
	commonPasswords = make([]string, 0, 19727) // number of total pwds in common-passwords.txt.gz
	if file, err := appfs.FS.Open(commonPasswordsPath); err == nil {
		defer func() { _ = file.Close() }()
		if gzRdr, err := gzip.NewReader(file); err == nil {
			scanner := bufio.NewScanner(gzRdr)
			for scanner.Scan() {
				commonPasswords = append(commonPasswords, strings.TrimSpace(scanner.Text()))
			}
		}
	}
	sort.Strings(commonPasswords)
}

func isCommonPassword(pwd string) bool {
	commonPasswordsOnce.Do(loadCommonPasswords)
	lpwd := strings.ToLower(pwd)
	idx := sort.SearchStrings(commonPasswords, lpwd)
	return idx < len(commonPasswords) && commonPasswords[idx] == lpwd
}

// Custom Validators

// allRolesValidation checks that provided user roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, role := range roles {
		if RolePriority(role) == 0 {
			return false
		}
	}
	return true
}

// userStructValidation does struct level validation on NewUser and UpdateUser structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		validateUsernameAndEmail(usr, sl)
		validatePassword(usr.Password, usr.Name, usr.Username, usr.Email, sl)
	case UpdateUser:
		if usr.Password != "" {
			validatePassword(usr.Password, usr.Name, usr.Username, usr.Email, sl)
		}
	}
}

// validateUsernameAndEmail checks that one of Username or Email is provided
func validateUsernameAndEmail(nu NewUser, sl validator.StructLevel) {
	if len(nu.Username) == 0 && len(nu.Email) == 0 {
		sl.ReportError(nu.Username, "username", "Username", usernameOrEmailTag, "")
		sl.ReportError(nu.Email, "email", "Email", usernameOrEmailTag, "")
	}
}

// PasswordPolicyError returns the tag of the first password policy rule `pwd` breaks, "" if none:
//   - minLen: 8
//   - no whitespace
//   - no all numeric
//   - complexity: 1 upper, 1 lower, 1 digit, 1 special
//   - no user attrs similarity
//   - no common password
func PasswordPolicyError(pwd string, attrs ...string) string {
	var (
		digitCount                             int
		hasUpper, hasLower, hasDig, hasSpecial bool
	)

	pwdLen := len([]rune(pwd))
	if pwdLen < pwdMinLen {
		return pwdMinLenTag
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return pwdNoSpaceTag
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == pwdLen {
		return pwdNotAllNumTag
	}

	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		return pwdComplexityTag
	}

	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(attr, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return pwdAttrSimTag
		}
	}

	if isCommonPassword(pwd) {
		return pwdNoCommonTag
	}
	return ""
}

func validatePassword(pwd, name, uname, email string, sl validator.StructLevel) {
	if tag := PasswordPolicyError(pwd, name, uname, email); tag != "" {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}
}
