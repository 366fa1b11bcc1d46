// Package tui is the interactive terminal frontend of the wallet client.
// It is a thin consumer of the core services: all validation, dispatch and
// state ownership lives below it.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletctl/config"
	"github.com/vadiminshakov/walletctl/internal/domain"
	"github.com/vadiminshakov/walletctl/internal/services/auth"
	"github.com/vadiminshakov/walletctl/internal/services/history"
	"github.com/vadiminshakov/walletctl/internal/services/validate"
	"github.com/vadiminshakov/walletctl/internal/services/wallet"
)

// App wires the core services to interactive forms.
type App struct {
	cfg     config.Config
	auth    *auth.Manager
	wallet  *wallet.Service
	history *history.Controller
	logger  *zap.Logger
}

// New creates the terminal app.
func New(cfg config.Config, authMgr *auth.Manager, walletSvc *wallet.Service, historyCtl *history.Controller, logger *zap.Logger) *App {
	return &App{
		cfg:     cfg,
		auth:    authMgr,
		wallet:  walletSvc,
		history: historyCtl,
		logger:  logger,
	}
}

// Run drives the session loop until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if a.auth.ConsumeExpiryNotice() {
			fmt.Println(errorStyle.Render("Session expired, please log in again."))
		}

		if a.auth.State() != domain.SessionAuthenticated {
			done, err := a.anonymousMenu(ctx)
			if err != nil {
				a.report(err)
			}
			if done {
				return nil
			}
			continue
		}

		done, err := a.mainMenu(ctx)
		if err != nil {
			a.report(err)
		}
		if done {
			return nil
		}
	}
}

func (a *App) anonymousMenu(ctx context.Context) (quit bool, err error) {
	fmt.Println(headerStyle.Render("WALLET"))

	var choice string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Welcome").
				Options(
					huh.NewOption("Log in", "login"),
					huh.NewOption("Sign up", "signup"),
					huh.NewOption("Quit", "quit"),
				).
				Value(&choice),
		),
	).Run(); err != nil {
		return false, err
	}

	switch choice {
	case "login":
		return false, a.loginForm(ctx)
	case "signup":
		return false, a.signupForm(ctx)
	default:
		return true, nil
	}
}

func (a *App) mainMenu(ctx context.Context) (quit bool, err error) {
	identity := a.auth.Session().Identity

	var choice string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Wallet (%s)", identity)).
				Options(
					huh.NewOption("Balances", "balance"),
					huh.NewOption("Transfer", "transfer"),
					huh.NewOption("Withdraw", "withdraw"),
					huh.NewOption("Deposit address", "deposit"),
					huh.NewOption("History", "history"),
					huh.NewOption("Log out", "logout"),
					huh.NewOption("Quit", "quit"),
				).
				Value(&choice),
		),
	).Run(); err != nil {
		return false, err
	}

	switch choice {
	case "balance":
		return false, a.showBalances(ctx)
	case "transfer":
		return false, a.transferForm(ctx)
	case "withdraw":
		return false, a.withdrawForm(ctx)
	case "deposit":
		return false, a.showDepositAddress(ctx)
	case "history":
		return false, a.browseHistory(ctx)
	case "logout":
		return false, a.auth.Logout()
	default:
		return true, nil
	}
}

func (a *App) loginForm(ctx context.Context) error {
	var email, password string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
		),
	).Run(); err != nil {
		return err
	}

	if err := a.auth.Login(ctx, email, password); err != nil {
		return describeLoginError(err)
	}

	// warm the balance view; a failure here is not a login failure
	if _, err := a.wallet.Balances().Refresh(ctx); err != nil {
		a.logger.Debug("initial balance refresh failed", zap.Error(err))
	}

	return nil
}

func (a *App) signupForm(ctx context.Context) error {
	var email, password string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&email),
			huh.NewInput().Title("Password").
				Description("At least 8 characters").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	).Run(); err != nil {
		return err
	}

	if err := a.auth.Signup(ctx, email, password); err != nil {
		return err
	}

	fmt.Println(sectionStyle.Render("Account created, you can log in now."))
	return nil
}

func (a *App) showBalances(ctx context.Context) error {
	balances, err := a.wallet.Balances().Refresh(ctx)
	if err != nil {
		// show the stale snapshot alongside the error
		fmt.Print(renderBalances(a.wallet.Balances().Read()))
		return err
	}

	fmt.Println(sectionStyle.Render("BALANCES"))
	fmt.Print(renderBalances(balances))
	return nil
}

func (a *App) transferForm(ctx context.Context) error {
	var toEmail, amountStr, memo string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Recipient email").Value(&toEmail),
			huh.NewInput().Title(fmt.Sprintf("Amount (%s)", a.cfg.DefaultAsset)).
				Value(&amountStr).
				Validate(validateDecimal),
			huh.NewInput().Title("Memo (optional)").Value(&memo),
		),
	).Run(); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
	if err != nil {
		return errors.Wrap(err, "parse amount")
	}

	if err := a.wallet.Transfer(ctx, validate.TransferInput{
		ToEmail: toEmail,
		Amount:  amount,
		Asset:   a.cfg.DefaultAsset,
		Memo:    memo,
	}); err != nil {
		return err
	}

	fmt.Println(sectionStyle.Render("Transfer sent."))
	return nil
}

func (a *App) withdrawForm(ctx context.Context) error {
	var address, amountStr, memo string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Destination TRON address").Value(&address),
			huh.NewInput().Title(fmt.Sprintf("Amount (%s)", a.cfg.DefaultAsset)).
				Description(fmt.Sprintf("Minimum %s, fee %s%%",
					validate.MinimumWithdrawal.String(),
					validate.WithdrawalFeeRate.Mul(decimal.NewFromInt(100)).String())).
				Value(&amountStr).
				Validate(validateDecimal),
			huh.NewInput().Title("Memo (optional)").Value(&memo),
		),
	).Run(); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
	if err != nil {
		return errors.Wrap(err, "parse amount")
	}

	ticket, err := a.wallet.PrepareWithdrawal(validate.WithdrawalInput{
		Address: address,
		Amount:  amount,
		Asset:   a.cfg.DefaultAsset,
		Memo:    memo,
	})
	if err != nil {
		return err
	}

	asset := ticket.Request.Asset
	var confirmed bool
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Confirm withdrawal").
				Description(fmt.Sprintf("Amount: %s %s\nFee:    %s %s\nNet:    %s %s\nTo:     %s",
					formatAmount(ticket.Request.Amount, asset), asset,
					formatAmount(ticket.Fee, asset), asset,
					formatAmount(ticket.Net, asset), asset,
					ticket.Request.DestinationAddress)).
				Value(&confirmed),
		),
	).Run(); err != nil {
		return err
	}
	if !confirmed {
		fmt.Println(dimStyle.Render("Withdrawal cancelled."))
		return nil
	}

	if err := a.wallet.ConfirmWithdrawal(ctx, ticket); err != nil {
		return err
	}

	fmt.Println(sectionStyle.Render("Withdrawal submitted, pending approval."))
	return nil
}

func (a *App) showDepositAddress(ctx context.Context) error {
	address, err := a.wallet.DepositAddress(ctx)
	if err != nil {
		return err
	}

	fmt.Println(sectionStyle.Render("DEPOSIT ADDRESS"))
	fmt.Println(address)
	fmt.Println(dimStyle.Render("Send only " + a.cfg.DefaultAsset + " (TRC-20) to this address."))
	return nil
}

func (a *App) browseHistory(ctx context.Context) error {
	result, err := a.history.Query(ctx, domain.PageQuery{Skip: 0, Limit: a.cfg.PageLimit})
	if err != nil {
		return err
	}

	for {
		fmt.Println(sectionStyle.Render("TRANSACTION HISTORY"))
		fmt.Print(renderHistoryPage(result))

		p := history.Paginate(result.Total, result.Query.Skip, result.Query.Limit)

		options := []huh.Option[string]{huh.NewOption("Filter", "filter")}
		if p.HasPrev {
			options = append(options, huh.NewOption("Previous page", "prev"))
		}
		if p.HasNext {
			options = append(options, huh.NewOption("Next page", "next"))
		}
		options = append(options, huh.NewOption("Back", "back"))

		var choice string
		if err := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().Title("History").Options(options...).Value(&choice),
			),
		).Run(); err != nil {
			return err
		}

		var next *domain.PageResult
		switch choice {
		case "prev":
			next, err = a.history.Page(ctx, p.CurrentPage-1)
		case "next":
			next, err = a.history.Page(ctx, p.CurrentPage+1)
		case "filter":
			next, err = a.filterForm(ctx)
		default:
			return nil
		}
		if err != nil {
			if errors.Is(err, domain.ErrSuperseded) {
				result = a.history.Visible()
				continue
			}
			return err
		}
		result = next
	}
}

func (a *App) filterForm(ctx context.Context) (*domain.PageResult, error) {
	var txType, status, asset string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Any", ""),
					huh.NewOption("Deposit", string(domain.TransactionDeposit)),
					huh.NewOption("Withdrawal", string(domain.TransactionWithdrawal)),
					huh.NewOption("Transfer", string(domain.TransactionTransfer)),
					huh.NewOption("Payment", string(domain.TransactionPayment)),
				).
				Value(&txType),
			huh.NewSelect[string]().
				Title("Status").
				Options(
					huh.NewOption("Any", ""),
					huh.NewOption("Pending", string(domain.StatusPending)),
					huh.NewOption("Completed", string(domain.StatusCompleted)),
					huh.NewOption("Failed", string(domain.StatusFailed)),
					huh.NewOption("Cancelled", string(domain.StatusCancelled)),
				).
				Value(&status),
			huh.NewInput().Title("Asset (empty for any)").Value(&asset),
		),
	).Run(); err != nil {
		return nil, err
	}

	return a.history.ApplyFilters(ctx, domain.HistoryFilters{
		Type:   txType,
		Status: status,
		Asset:  strings.ToUpper(strings.TrimSpace(asset)),
	})
}

// describeLoginError rewrites the 401 a wrong email/password produces into a
// user-facing message. A rejected login sets no expiry notice, so the session
// loop would otherwise print nothing at all.
func describeLoginError(err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return errors.New("invalid email or password")
	}
	return err
}

func (a *App) report(err error) {
	switch {
	case errors.Is(err, domain.ErrTimeout):
		fmt.Println(errorStyle.Render("Request timed out, try again."))
	case errors.Is(err, domain.ErrNetwork):
		fmt.Println(errorStyle.Render("Connection problem, check your network."))
	case errors.Is(err, domain.ErrUnauthorized):
		// expiry notice is printed at the top of the loop
	default:
		fmt.Println(errorStyle.Render(err.Error()))
	}
	a.logger.Debug("operation failed", zap.Error(err))
}

func validateDecimal(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("amount is required")
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("not a valid amount")
	}
	return nil
}
