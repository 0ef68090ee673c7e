package service

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible notification.
type Notice struct {
	Level   NoticeLevel
	Message string
}

func successNotice(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }
func errorNotice(msg string) Notice   { return Notice{Level: NoticeError, Message: msg} }

// User-visible messages. Validation rejections and server rejections share
// MsgSaveError.
const (
	MsgSignedIn           = "Signed in"
	MsgSignInFailed       = "Signed in Failed"
	MsgInvalidResponse    = "Invalid response data"
	MsgLoginError         = "Error during login"
	MsgSaved              = "Saved"
	MsgSaveError          = "Error occured while saving"
	MsgConfirmFetchFailed = "Error fetching updated data after save"
	MsgSaveTransportError = "Error during save"
	MsgSaveInFlight       = "Save already in progress"
)
