package handlers

const (
	codeBadRequest           = "bad_request"
	codeInvalidImage         = "invalid_image"
	codeUnsupportedUpload    = "unsupported_upload"
	codeMemberNotFound       = "member_not_found"
	codeStyleNotFound        = "style_not_found"
	codeHistoryNotFound      = "history_not_found"
	codeImageNotFound        = "image_not_found"
	codeSynthesisUnavailable = "synthesis_unavailable"
	codeSynthesisTimeout     = "synthesis_timeout"
	codeSynthesisFailed      = "synthesis_failed"
	codeStorageFailed        = "storage_failed"
	codeInternal             = "internal"
)

var messages = map[string]map[string]string{
	"en": {
		codeBadRequest:           "The request is invalid.",
		codeInvalidImage:         "Please upload a JPG, PNG or WEBP image.",
		codeUnsupportedUpload:    "Unknown upload type.",
		codeMemberNotFound:       "Member not found.",
		codeStyleNotFound:        "Hairstyle not found.",
		codeHistoryNotFound:      "History entry not found.",
		codeImageNotFound:        "Image not found.",
		codeSynthesisUnavailable: "Hairstyle synthesis is not configured.",
		codeSynthesisTimeout:     "Synthesis took too long. Please try again.",
		codeSynthesisFailed:      "Synthesis failed. Please try another photo or style.",
		codeStorageFailed:        "Could not store the image.",
		codeInternal:             "Something went wrong.",
	},
	"ko": {
		codeBadRequest:           "잘못된 요청입니다.",
		codeInvalidImage:         "JPG, PNG 또는 WEBP 이미지를 올려주세요.",
		codeUnsupportedUpload:    "알 수 없는 업로드 유형입니다.",
		codeMemberNotFound:       "회원을 찾을 수 없습니다.",
		codeStyleNotFound:        "헤어스타일을 찾을 수 없습니다.",
		codeHistoryNotFound:      "합성 기록을 찾을 수 없습니다.",
		codeImageNotFound:        "이미지를 찾을 수 없습니다.",
		codeSynthesisUnavailable: "헤어스타일 합성이 설정되지 않았습니다.",
		codeSynthesisTimeout:     "합성 시간이 초과되었습니다. 다시 시도해주세요.",
		codeSynthesisFailed:      "합성에 실패했습니다. 다른 사진이나 스타일로 시도해주세요.",
		codeStorageFailed:        "이미지를 저장하지 못했습니다.",
		codeInternal:             "문제가 발생했습니다.",
	},
}

func message(locale, code string) string {
	if m, ok := messages[locale][code]; ok {
		return m
	}
	if m, ok := messages["en"][code]; ok {
		return m
	}
	return code
}
