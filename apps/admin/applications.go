package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) sendReminders() error {
	n, err := cli.appSvc.SendDueReminders(context.Background(), cli.now())
	if err != nil {
		return err
	}
	fmt.Printf("%d reminder(s) sent\n", n)
	return nil
}

func (cli *commandLine) expireApplications() error {
	n, err := cli.appSvc.ExpireApplications(context.Background(), cli.now())
	if err != nil {
		return err
	}
	fmt.Printf("%d application(s) expired\n", n)
	return nil
}
