package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pinnhq/pinncheck/internal/auth"
	"github.com/pinnhq/pinncheck/internal/checks"
	"github.com/pinnhq/pinncheck/internal/dom"
)

// BuildAction translates an interaction check into a chromedp Action.
// Probe checks (text_visible, element_present) and screenshots need result
// storage and are sequenced by the executor instead.
func BuildAction(check checks.Check, creds *checks.Credentials) (chromedp.Action, error) {
	switch check.Kind {
	case checks.KindNavigate:
		if check.Value == "" {
			return nil, fmt.Errorf("navigate check requires a non-empty URL value")
		}
		return dom.NavigateAction(check.Value), nil

	case checks.KindSleep:
		dur, err := time.ParseDuration(check.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid duration for sleep check %q: %w", check.Value, err)
		}
		return chromedp.Sleep(dur), nil

	case checks.KindWaitVisible:
		if check.Selector == "" {
			return nil, fmt.Errorf("wait_visible check requires a selector")
		}
		return dom.WaitVisibleAction(check.Selector), nil

	case checks.KindWaitHidden:
		if check.Selector == "" {
			return nil, fmt.Errorf("wait_hidden check requires a selector")
		}
		return dom.WaitHiddenAction(check.Selector), nil

	case checks.KindClick:
		if check.Selector == "" {
			return nil, fmt.Errorf("click check requires a selector")
		}
		return dom.ClickAction(check.Selector), nil

	case checks.KindType:
		if check.Selector == "" {
			return nil, fmt.Errorf("type check requires a selector")
		}
		return dom.TypeAction(check.Selector, check.Value), nil

	case checks.KindEval:
		if check.Value == "" {
			return nil, fmt.Errorf("eval check requires script code in value")
		}
		return dom.RunScriptAction(check.Value, nil), nil

	case checks.KindLogin:
		return buildLoginSequence(creds)

	default:
		return nil, fmt.Errorf("unknown check kind: %s", check.Kind)
	}
}

// buildLoginSequence fills a conventional login form. When a TOTP secret is
// configured, the code is derived at run time so it is still within its
// validity period when the form asks for it.
func buildLoginSequence(creds *checks.Credentials) (chromedp.Action, error) {
	if creds == nil || creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("credentials required for login check but not provided or incomplete")
	}

	userSel := "#username"
	passSel := "#password"
	submitSel := "button[type='submit'], input[type='submit']"
	otpSel := "input[autocomplete='one-time-code'], input[name='otp'], input[name='code']"

	sequence := chromedp.Tasks{
		chromedp.WaitVisible(userSel, chromedp.ByQuery),
		chromedp.SendKeys(userSel, creds.Username, chromedp.ByQuery),
		chromedp.WaitVisible(passSel, chromedp.ByQuery),
		chromedp.SendKeys(passSel, creds.Password, chromedp.ByQuery),
		chromedp.WaitVisible(submitSel, chromedp.ByQuery),
		chromedp.Click(submitSel, chromedp.ByQuery),
	}

	if creds.TOTPSecret != "" {
		secret := creds.TOTPSecret
		sequence = append(sequence, chromedp.ActionFunc(func(ctx context.Context) error {
			code, err := auth.GenerateTOTP(secret)
			if err != nil {
				return fmt.Errorf("failed to generate login code: %w", err)
			}
			steps := chromedp.Tasks{
				chromedp.WaitVisible(otpSel, chromedp.ByQuery),
				chromedp.SendKeys(otpSel, code, chromedp.ByQuery),
				chromedp.Submit(otpSel, chromedp.ByQuery),
			}
			return steps.Do(ctx)
		}))
	}

	return sequence, nil
}
