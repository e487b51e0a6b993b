package public

import (
	handlershared "github.com/nutrifit/internal/http/handlers/shared"
	"github.com/nutrifit/internal/http/response"
	"github.com/nutrifit/internal/service"

	"github.com/gin-gonic/gin"
)

var cartErrorRules = []handlershared.MappedError{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Msg: "Product not found."},
	{Target: service.ErrValidation, Code: response.CodeBadRequest, Msg: "Invalid cart request."},
}

var checkoutErrorRules = []handlershared.MappedError{
	{Target: service.ErrCartEmpty, Code: response.CodeBadRequest, Msg: "Your cart is empty!"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Msg: "Please enter a valid email address."},
	{Target: service.ErrOrderItemsInvalid, Code: response.CodeBadRequest, Msg: "Invalid order items."},
	{Target: service.ErrEmailRecipientRejected, Code: response.CodeBadRequest, Msg: "The email address was rejected."},
	{Target: service.ErrEmailServiceDisabled, Code: response.CodeServiceUnavailable, Msg: "Order emails are not available right now."},
	{Target: service.ErrEmailServiceNotConfigured, Code: response.CodeServiceUnavailable, Msg: "Order emails are not available right now."},
}

var planErrorRules = []handlershared.MappedError{
	{Target: service.ErrPlanCatalogEmpty, Code: response.CodeServiceUnavailable, Msg: "No fitness plans are available."},
	{Target: service.ErrExerciseNotFound, Code: response.CodeNotFound, Msg: "Exercise not found."},
	{Target: service.ErrPlanNotFound, Code: response.CodeNotFound, Msg: "No plan assigned yet."},
	{Target: service.ErrUserIDRequired, Code: response.CodeUnauthorized, Msg: "Please sign in to continue."},
}

var profileErrorRules = []handlershared.MappedError{
	{Target: service.ErrExerciseLevelInvalid, Code: response.CodeBadRequest, Msg: "Exercise level must be Beginner, Intermediate or Advanced."},
	{Target: service.ErrUserDetailsInvalid, Code: response.CodeBadRequest, Msg: "Invalid profile details."},
	{Target: service.ErrUserIDRequired, Code: response.CodeUnauthorized, Msg: "Please sign in to continue."},
}

var assistantErrorRules = []handlershared.MappedError{
	{Target: service.ErrAssistantSessionGone, Code: response.CodeNotFound, Msg: "Assistant session not found."},
	{Target: service.ErrAssistantEnded, Code: response.CodeConflict, Msg: "This conversation has ended."},
	{Target: service.ErrAssistantModeInvalid, Code: response.CodeBadRequest, Msg: "Operation not available in this session mode."},
	{Target: service.ErrAssistantEventBad, Code: response.CodeBadRequest, Msg: "Invalid assistant event."},
	{Target: service.ErrMessageEmpty, Code: response.CodeBadRequest, Msg: "Message cannot be empty."},
}

func respondCartError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, cartErrorRules, response.CodeInternal, "Failed to update cart.")
}

func respondCheckoutError(c *gin.Context, err error) {
	rules := handlershared.ConcatMappedErrors(checkoutErrorRules, cartErrorRules)
	handlershared.RespondMappedError(c, err, rules, response.CodeBadGateway, "Failed to place order. Please try again.")
}

func respondPlanError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, planErrorRules, response.CodeInternal, "Failed to load fitness plan.")
}

func respondProfileError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, profileErrorRules, response.CodeInternal, "Failed to save profile.")
}

func respondAssistantError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, assistantErrorRules, response.CodeInternal, "Assistant request failed.")
}
