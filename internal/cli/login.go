package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	storefront "github.com/bunhouse/storefront-go"
	"github.com/bunhouse/storefront-go/otp"
)

func newLoginCmd() *cobra.Command {
	var phone string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a phone OTP",
		Long:  "Request a one-time code for your phone number and verify it to start a session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reader := bufio.NewReader(os.Stdin)
			region := client.Region()

			if phone == "" {
				fmt.Printf("Phone number (%s, %d digits): ", region.Name, region.PhoneDigits)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read phone number: %w", err)
				}
				phone = strings.TrimSpace(line)
			}

			flow, err := client.NewOTPFlow()
			if err != nil {
				return err
			}
			defer flow.Reset()

			if err := flow.RequestOTP(ctx, phone); err != nil {
				if errors.Is(err, storefront.ErrPhoneInvalid) {
					return fmt.Errorf("%s", flow.State().Error)
				}
				return err
			}

			state := flow.State()
			if state.IsNewUser {
				fmt.Println("Welcome! A code was sent to register this number.")
			} else {
				fmt.Println("A code was sent to your number.")
			}

			user, err := promptAndVerify(cmd, flow, reader)
			if err != nil {
				return err
			}

			fmt.Printf("Logged in as %s\n", user.DisplayName)
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (prompted if omitted)")
	return cmd
}

// promptAndVerify reads codes until one verifies, offering resend once the
// cooldown elapses.
func promptAndVerify(cmd *cobra.Command, flow *otp.Flow, reader *bufio.Reader) (storefront.UserInfo, error) {
	for {
		fmt.Print("Code (or 'resend'): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return storefront.UserInfo{}, fmt.Errorf("read code: %w", err)
		}
		input := strings.TrimSpace(line)

		if input == "resend" {
			switch err := flow.ResendOTP(cmd.Context()); {
			case errors.Is(err, storefront.ErrCooldownActive):
				fmt.Printf("Please wait %d seconds before resending.\n", flow.Countdown())
			case err != nil:
				fmt.Printf("Resend failed: %s\n", flow.State().Error)
			default:
				fmt.Println("A new code was sent.")
			}
			continue
		}

		user, err := flow.VerifyOTP(cmd.Context(), input)
		if err != nil {
			state := flow.State()
			if state.Error != "" {
				fmt.Println(state.Error)
				continue
			}
			return storefront.UserInfo{}, err
		}
		return user, nil
	}
}
