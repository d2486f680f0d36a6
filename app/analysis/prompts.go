package analysis

// Prompt texts sent to the model. All classification and commentary is done
// in Vietnamese; replies are matched against the token lists in analyzer.go.

const sentimentPrompt = `Phân loại nội dung sau thành các tín hiệu: tích cực (positive), trung bình (neutral), và tiêu cực (negative). Chỉ trả về 'positive', 'neutral', hoặc 'negative'.

Text: %s

Signal:`

const insightPrompt = `Bạn là một chuyên gia phân tích tài chính với kinh nghiệm phân tích cổ phiếu Việt Nam. Hãy phân tích nội dung bài báo sau đây về mã cổ phiếu %[1]s và đưa ra nhận định chuyên sâu.

Nội dung bài báo:
%[2]s

Hãy phân tích các yếu tố sau (nếu có trong bài báo):
1. Kết quả kinh doanh gần đây hoặc dự kiến
2. Chiến lược phát triển của công ty
3. Các thay đổi về quản trị, nhân sự cấp cao
4. Các dự án, sản phẩm, dịch vụ mới
5. Tình hình thị trường và đối thủ cạnh tranh
6. Các yếu tố vĩ mô ảnh hưởng đến công ty
7. Các rủi ro tiềm ẩn hoặc cơ hội đầu tư

Đưa ra nhận định ngắn gọn trong 2-3 câu, tập trung vào thông tin quan trọng nhất liên quan đến mã %[1]s và ý nghĩa đối với nhà đầu tư. Nếu bài báo không có thông tin đủ để phân tích, hãy trả về "Không đủ thông tin để phân tích".

Nhận định:
Không dùng định dạng markdown hoặc in đậm`

const recommendationPrompt = `Bạn là một chuyên gia phân tích tài chính với kinh nghiệm phân tích cổ phiếu Việt Nam. Dựa trên nội dung bài báo sau đây về mã cổ phiếu %[1]s, hãy đưa ra khuyến nghị đầu tư.

Nội dung bài báo:
%[2]s

Hãy đánh giá các yếu tố sau (nếu có trong bài báo):
1. Triển vọng tăng trưởng ngắn hạn và dài hạn
2. Định giá hiện tại (P/E, P/B, EV/EBITDA...)
3. Các yếu tố cơ bản của doanh nghiệp
4. Các yếu tố kỹ thuật và xu hướng giá
5. Các rủi ro tiềm ẩn

Đưa ra một trong các khuyến nghị sau kèm lý do ngắn gọn (1-2 câu):
- MUA: Nếu có triển vọng tích cực rõ ràng
- NẮM GIỮ: Nếu triển vọng ổn định hoặc chưa rõ ràng
- BÁN: Nếu có triển vọng tiêu cực rõ ràng
- THEO DÕI: Nếu cần thêm thông tin để đánh giá

Nếu bài báo không có đủ thông tin để đưa ra khuyến nghị, hãy trả về "Không đủ thông tin để đưa ra khuyến nghị".

Khuyến nghị:
Không dùng định dạng markdown hoặc in đậm`

const keyMetricsPrompt = `Trích xuất các chỉ số tài chính và con số quan trọng từ bài báo sau về mã cổ phiếu %[1]s.

Nội dung bài báo:
%[2]s

Hãy trích xuất các thông tin sau (nếu có trong bài báo):
1. Doanh thu (quý/năm)
2. Lợi nhuận (quý/năm)
3. Biên lợi nhuận
4. EPS (thu nhập trên mỗi cổ phiếu)
5. P/E (hệ số giá trên thu nhập)
6. Cổ tức
7. Giá mục tiêu
8. Tăng trưởng (%%)
9. Các chỉ số tài chính khác

Trả về dưới dạng danh sách các chỉ số với giá trị và thời kỳ tương ứng. Nếu không tìm thấy thông tin, hãy trả về "Không tìm thấy chỉ số tài chính trong bài báo".

Các chỉ số:
Không dùng định dạng markdown hoặc in đậm`

const summarizePrompt = `Summarize the following text in one short sentence in Vietnamese.

Text: %s

Summary:`

const insightsSummaryPrompt = `Dựa trên các nhận định sau đây về mã chứng khoán %[1]s, hãy tóm tắt ngắn gọn trong một câu về tình hình và ý nghĩa đối với nhà đầu tư:
%[2]s

Tóm tắt:`

const headlinesSummaryPrompt = `Dựa trên các tiêu đề tin tức sau đây về mã chứng khoán, hãy tóm tắt ngắn gọn trong một câu về tình hình và ý nghĩa đối với nhà đầu tư:
%s

Tóm tắt:`
