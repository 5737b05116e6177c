package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vipgate/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportPageSize = 200

// exportVIPsToExcel создает Excel файл со всеми активными подписчиками
func (b *Bot) exportVIPsToExcel(ctx context.Context) (string, error) {
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Suscriptores VIP"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Usuario", "Rol", "Alta", "Vencimiento", "Estado", "Recordatorio enviado"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	row := 2
	for offset := 0; ; offset += exportPageSize {
		subs, err := b.repo.ListActiveVIPs(ctx, offset, exportPageSize)
		if err != nil {
			return "", fmt.Errorf("error listing subscribers: %v", err)
		}
		if len(subs) == 0 {
			break
		}

		for _, sub := range subs {
			b.writeSubscriberRow(f, sheetName, row, sub)
			row++
		}

		if len(subs) < exportPageSize {
			break
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 15)
	_ = f.SetColWidth(sheetName, "B", "B", 10)
	_ = f.SetColWidth(sheetName, "C", "D", 20)
	_ = f.SetColWidth(sheetName, "E", "F", 15)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("vip_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Int("rows", row-2).Msg("Excel file created")
	return filePath, nil
}

func (b *Bot) writeSubscriberRow(f *excelize.File, sheetName string, row int, sub *models.UserSubscription) {
	expiry := ""
	if sub.ExpiryDate != nil {
		expiry = sub.ExpiryDate.Format("02.01.2006 15:04")
	}

	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), sub.UserID)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), sub.Role)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), sub.JoinDate.Format("02.01.2006 15:04"))
	_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), expiry)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), sub.Status)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), boolToSiNo(sub.ReminderSent))
}

// boolToSiNo преобразует bool в "Sí"/"No"
func boolToSiNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}
