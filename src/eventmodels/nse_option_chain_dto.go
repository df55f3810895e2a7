package eventmodels

import (
	"fmt"
	"time"
)

type NseOptionSideDTO struct {
	OpenInterest                float64 `json:"openInterest"`
	ChangeInOpenInterest        float64 `json:"changeinOpenInterest"`
	PercentChangeInOpenInterest float64 `json:"pchangeinOpenInterest"`
	TotalTradedVolume           float64 `json:"totalTradedVolume"`
	ImpliedVolatility           float64 `json:"impliedVolatility"`
	LastPrice                   float64 `json:"lastPrice"`
	BidPrice                    float64 `json:"bidprice"`
	AskPrice                    float64 `json:"askPrice"`
	TotalBuyQuantity            float64 `json:"totalBuyQuantity"`
	TotalSellQuantity           float64 `json:"totalSellQuantity"`
	UnderlyingValue             float64 `json:"underlyingValue"`
}

func (dto *NseOptionSideDTO) ToOptionSide() OptionSide {
	if dto == nil {
		return OptionSide{}
	}

	return OptionSide{
		Listed:                      true,
		OpenInterest:                dto.OpenInterest,
		ChangeInOpenInterest:        dto.ChangeInOpenInterest,
		PercentChangeInOpenInterest: dto.PercentChangeInOpenInterest,
		TotalTradedVolume:           dto.TotalTradedVolume,
		ImpliedVolatility:           dto.ImpliedVolatility,
		BidPrice:                    dto.BidPrice,
		AskPrice:                    dto.AskPrice,
		LastPrice:                   dto.LastPrice,
		TotalBuyQuantity:            dto.TotalBuyQuantity,
		TotalSellQuantity:           dto.TotalSellQuantity,
		UnderlyingValue:             dto.UnderlyingValue,
	}
}

type NseOptionChainRowDTO struct {
	StrikePrice *float64          `json:"strikePrice"`
	ExpiryDate  *string           `json:"expiryDate"`
	CE          *NseOptionSideDTO `json:"CE"`
	PE          *NseOptionSideDTO `json:"PE"`
}

// ToOptionChainRow fails with a DataError when the strike or expiry is
// missing or the expiry cannot be parsed. Missing numeric fields decode to 0.
func (dto *NseOptionChainRowDTO) ToOptionChainRow(index int) (OptionChainRow, error) {
	if dto.StrikePrice == nil {
		return OptionChainRow{}, NewDataError("strikePrice", index, MalformedRowErr)
	}

	if dto.ExpiryDate == nil || *dto.ExpiryDate == "" {
		return OptionChainRow{}, NewDataError("expiryDate", index, MalformedRowErr)
	}

	expiry, err := ParseExpiryDate(*dto.ExpiryDate)
	if err != nil {
		return OptionChainRow{}, NewDataError("expiryDate", index, fmt.Errorf("%w: %v", MalformedRowErr, err))
	}

	return OptionChainRow{
		StrikePrice: *dto.StrikePrice,
		ExpiryDate:  expiry,
		Call:        dto.CE.ToOptionSide(),
		Put:         dto.PE.ToOptionSide(),
	}, nil
}

type NseOptionChainRecordsDTO struct {
	ExpiryDates     []string               `json:"expiryDates"`
	Timestamp       string                 `json:"timestamp"`
	UnderlyingValue float64                `json:"underlyingValue"`
	Data            []NseOptionChainRowDTO `json:"data"`
}

// NseOptionChainDTO is the payload of the exchange's option-chain-indices
// endpoint.
type NseOptionChainDTO struct {
	Records NseOptionChainRecordsDTO `json:"records"`
}

func (dto *NseOptionChainDTO) ToSnapshot(symbol string, fetchedAt time.Time) (*OptionChainSnapshot, error) {
	rows := make([]OptionChainRow, 0, len(dto.Records.Data))
	for i := range dto.Records.Data {
		row, err := dto.Records.Data[i].ToOptionChainRow(i)
		if err != nil {
			return nil, fmt.Errorf("NseOptionChainDTO.ToSnapshot: %w", err)
		}

		rows = append(rows, row)
	}

	return NewOptionChainSnapshot(symbol, fetchedAt, rows), nil
}
